package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saralgov/licence-backend/internal/response"
	"github.com/saralgov/licence-backend/internal/service"
)

// MediaHandler handles media upload endpoints.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadQuestionImage godoc
// POST /api/v1/admin/media/upload
// Uploads a question illustration and returns its URL.
func (h *MediaHandler) UploadQuestionImage(c *gin.Context) {
	h.upload(c, service.UploadKindQuestion)
}

// UploadDocument godoc
// POST /api/v1/user/kyc/document
// Uploads an identity document for a KYC submission.
func (h *MediaHandler) UploadDocument(c *gin.Context) {
	h.upload(c, service.UploadKindDocument)
}

func (h *MediaHandler) upload(c *gin.Context, kind string) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	url, err := h.mediaService.SaveUpload(file, header, kind)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}
