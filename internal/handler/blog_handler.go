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

// BlogHandler handles announcement endpoints. Reading is public;
// writing requires the blog permission.
type BlogHandler struct {
	blogService *service.BlogService
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(blogService *service.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

// ListPublic godoc
// GET /api/v1/blog?page=&per_page=
func (h *BlogHandler) ListPublic(c *gin.Context) {
	h.list(c, true)
}

// ListAll godoc
// GET /api/v1/admin/blog?page=&per_page=
// Includes drafts.
func (h *BlogHandler) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *BlogHandler) list(c *gin.Context, publishedOnly bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	posts, pagination, err := h.blogService.List(c.Request.Context(), publishedOnly, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"posts": posts}, pagination)
}

// GetBySlug godoc
// GET /api/v1/blog/:slug
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	post, err := h.blogService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"post": post})
}

// Create godoc
// POST /api/v1/admin/blog
func (h *BlogHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateBlogPostRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	post, err := h.blogService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"post": post})
}

// Update godoc
// PATCH /api/v1/admin/blog/:post_id
func (h *BlogHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateBlogPostRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	post, err := h.blogService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"post": post})
}

// Delete godoc
// DELETE /api/v1/admin/blog/:post_id
func (h *BlogHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.blogService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
