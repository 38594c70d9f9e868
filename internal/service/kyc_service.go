package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
	"github.com/saralgov/licence-backend/internal/response"
)

// KYC workflow errors.
var (
	ErrKYCNotFound        = errors.New("kyc submission not found")
	ErrKYCPending         = errors.New("a submission is already awaiting review")
	ErrKYCAlreadyApproved = errors.New("identity already verified")
	ErrKYCAlreadyReviewed = errors.New("submission already reviewed")
)

// KYCService handles identity verification workflow logic.
type KYCService struct {
	kycRepo *repository.KYCRepository
}

// NewKYCService creates a new KYCService.
func NewKYCService(kycRepo *repository.KYCRepository) *KYCService {
	return &KYCService{kycRepo: kycRepo}
}

// Submit files a new identity document for review. Rejected citizens
// may resubmit; pending and approved submissions block a new one.
func (s *KYCService) Submit(ctx context.Context, userID uuid.UUID, req *model.SubmitKYCRequest) (*model.KYCSubmission, error) {
	latest, err := s.kycRepo.GetLatestByUser(ctx, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if latest != nil {
		switch latest.Status {
		case model.KYCStatusPending:
			return nil, ErrKYCPending
		case model.KYCStatusApproved:
			return nil, ErrKYCAlreadyApproved
		}
	}

	sub := &model.KYCSubmission{
		UserID:         userID,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		DocumentURL:    req.DocumentURL,
		DateOfBirth:    req.DateOfBirth,
		Address:        req.Address,
		Status:         model.KYCStatusPending,
	}
	if err := s.kycRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// MySubmission returns the citizen's most recent submission.
func (s *KYCService) MySubmission(ctx context.Context, userID uuid.UUID) (*model.KYCSubmission, error) {
	sub, err := s.kycRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKYCNotFound
		}
		return nil, err
	}
	return sub, nil
}

// List retrieves submissions in a given state for review, oldest first.
func (s *KYCService) List(ctx context.Context, status model.KYCStatus, page, perPage int) ([]model.KYCSubmission, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	subs, total, err := s.kycRepo.ListByStatus(ctx, status, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if subs == nil {
		subs = []model.KYCSubmission{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return subs, pagination, nil
}

// Review approves or rejects a pending submission. Reviews are final:
// a second review of the same submission fails.
func (s *KYCService) Review(ctx context.Context, id, reviewerID uuid.UUID, req *model.ReviewKYCRequest) (*model.KYCSubmission, error) {
	status := model.KYCStatusRejected
	if req.Approve {
		status = model.KYCStatusApproved
	}

	reviewed, err := s.kycRepo.Review(ctx, id, status, req.Note, reviewerID)
	if err != nil {
		return nil, err
	}
	if !reviewed {
		// Either the id is unknown or the submission left the pending
		// state; disambiguate for the caller.
		if _, err := s.kycRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrKYCNotFound
			}
			return nil, err
		}
		return nil, ErrKYCAlreadyReviewed
	}

	return s.kycRepo.GetByID(ctx, id)
}
