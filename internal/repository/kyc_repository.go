package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saralgov/licence-backend/internal/model"
)

// KYCRepository handles identity-submission data access.
type KYCRepository struct {
	pool *pgxpool.Pool
}

// NewKYCRepository creates a new KYCRepository.
func NewKYCRepository(pool *pgxpool.Pool) *KYCRepository {
	return &KYCRepository{pool: pool}
}

// Create inserts a new pending submission.
func (r *KYCRepository) Create(ctx context.Context, k *model.KYCSubmission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO kyc_submissions
		   (user_id, document_type, document_number, document_url, date_of_birth, address, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, submitted_at`,
		k.UserID, k.DocumentType, k.DocumentNumber, k.DocumentURL, k.DateOfBirth, k.Address, model.KYCStatusPending,
	).Scan(&k.ID, &k.SubmittedAt)
}

// GetLatestByUser retrieves the user's most recent submission.
func (r *KYCRepository) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*model.KYCSubmission, error) {
	k := &model.KYCSubmission{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, document_type, document_number, document_url, date_of_birth,
		        address, status, review_note, reviewed_by, submitted_at, reviewed_at
		 FROM kyc_submissions
		 WHERE user_id = $1
		 ORDER BY submitted_at DESC
		 LIMIT 1`, userID,
	).Scan(&k.ID, &k.UserID, &k.DocumentType, &k.DocumentNumber, &k.DocumentURL, &k.DateOfBirth,
		&k.Address, &k.Status, &k.ReviewNote, &k.ReviewedBy, &k.SubmittedAt, &k.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return k, nil
}

// GetByID retrieves one submission.
func (r *KYCRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.KYCSubmission, error) {
	k := &model.KYCSubmission{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, document_type, document_number, document_url, date_of_birth,
		        address, status, review_note, reviewed_by, submitted_at, reviewed_at
		 FROM kyc_submissions WHERE id = $1`, id,
	).Scan(&k.ID, &k.UserID, &k.DocumentType, &k.DocumentNumber, &k.DocumentURL, &k.DateOfBirth,
		&k.Address, &k.Status, &k.ReviewNote, &k.ReviewedBy, &k.SubmittedAt, &k.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return k, nil
}

// ListByStatus retrieves submissions for admin review, oldest first so
// the queue is worked in order.
func (r *KYCRepository) ListByStatus(ctx context.Context, status model.KYCStatus, limit, offset int) ([]model.KYCSubmission, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM kyc_submissions WHERE status = $1`, status,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, document_type, document_number, document_url, date_of_birth,
		        address, status, review_note, reviewed_by, submitted_at, reviewed_at
		 FROM kyc_submissions
		 WHERE status = $1
		 ORDER BY submitted_at ASC
		 LIMIT $2 OFFSET $3`, status, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var subs []model.KYCSubmission
	for rows.Next() {
		var k model.KYCSubmission
		if err := rows.Scan(&k.ID, &k.UserID, &k.DocumentType, &k.DocumentNumber, &k.DocumentURL, &k.DateOfBirth,
			&k.Address, &k.Status, &k.ReviewNote, &k.ReviewedBy, &k.SubmittedAt, &k.ReviewedAt); err != nil {
			return nil, 0, err
		}
		subs = append(subs, k)
	}
	return subs, total, rows.Err()
}

// Review records an approve/reject decision. Only pending submissions
// are affected; the returned bool reports whether a row changed.
func (r *KYCRepository) Review(ctx context.Context, id uuid.UUID, status model.KYCStatus, note string, reviewerID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE kyc_submissions
		 SET status = $1, review_note = $2, reviewed_by = $3, reviewed_at = $4
		 WHERE id = $5 AND status = $6`,
		status, note, reviewerID, time.Now(), id, model.KYCStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsApproved reports whether the user's latest submission is approved.
func (r *KYCRepository) IsApproved(ctx context.Context, userID uuid.UUID) (bool, error) {
	var approved bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM kyc_submissions
		   WHERE user_id = $1 AND status = $2
		 )`, userID, model.KYCStatusApproved,
	).Scan(&approved)
	return approved, err
}
