package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/saralgov/licence-backend/internal/middleware"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/response"
	"github.com/saralgov/licence-backend/internal/service"
	"github.com/saralgov/licence-backend/internal/validator"
)

// KYCHandler handles identity verification endpoints: citizen
// submission on one side, back-office review on the other.
type KYCHandler struct {
	kycService *service.KYCService
}

// NewKYCHandler creates a new KYCHandler.
func NewKYCHandler(kycService *service.KYCService) *KYCHandler {
	return &KYCHandler{kycService: kycService}
}

// Submit godoc
// POST /api/v1/user/kyc
// Files an identity document for review.
func (h *KYCHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitKYCRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.kycService.Submit(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKYCPending):
			response.Fail(c, http.StatusConflict, response.ErrKYCPending)
		case errors.Is(err, service.ErrKYCAlreadyApproved):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"submission": sub})
}

// MySubmission godoc
// GET /api/v1/user/kyc
// Returns the citizen's latest submission and its review state.
func (h *KYCHandler) MySubmission(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sub, err := h.kycService.MySubmission(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrKYCNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// List godoc
// GET /api/v1/admin/kyc?status=&page=&per_page=
// Lists submissions for review, oldest first.
func (h *KYCHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	status := model.KYCStatus(c.DefaultQuery("status", string(model.KYCStatusPending)))
	switch status {
	case model.KYCStatusPending, model.KYCStatusApproved, model.KYCStatusRejected:
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	subs, pagination, err := h.kycService.List(c.Request.Context(), status, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"submissions": subs}, pagination)
}

// Review godoc
// POST /api/v1/admin/kyc/:submission_id/review
// Approves or rejects a pending submission. Reviews are final.
func (h *KYCHandler) Review(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewKYCRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.kycService.Review(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKYCNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrKYCAlreadyReviewed):
			response.Fail(c, http.StatusConflict, response.ErrKYCAlreadyReviewed)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}
