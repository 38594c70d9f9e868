package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/response"
	"github.com/saralgov/licence-backend/internal/service"
	"github.com/saralgov/licence-backend/internal/validator"
)

// AdminHandler handles back-office result and licence endpoints.
type AdminHandler struct {
	examService *service.ExamService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(examService *service.ExamService) *AdminHandler {
	return &AdminHandler{examService: examService}
}

// ListResults godoc
// GET /api/v1/admin/results?page=&per_page=
func (h *AdminHandler) ListResults(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	results, pagination, err := h.examService.ListAllResults(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// ListPendingLicences godoc
// GET /api/v1/admin/licences/pending?page=&per_page=
func (h *AdminHandler) ListPendingLicences(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	licences, pagination, err := h.examService.PendingLicences(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"licences": licences}, pagination)
}

// IssueLicence godoc
// POST /api/v1/admin/licences/:licence_id/issue
// Assigns a licence number to a pending licence.
func (h *AdminHandler) IssueLicence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("licence_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.IssueLicenceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.examService.IssueLicence(c.Request.Context(), id, req.LicenceNumber); err != nil {
		if errors.Is(err, service.ErrLicenceNotPending) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"issued": true})
}
