package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saralgov/licence-backend/internal/exam"
	"github.com/saralgov/licence-backend/internal/middleware"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/response"
	"github.com/saralgov/licence-backend/internal/service"
	"github.com/saralgov/licence-backend/internal/validator"
)

// ExamHandler handles the REST surface of exam sessions. The live
// in-exam channel (ticks, answers, integrity events) is the WebSocket;
// these endpoints cover setup, reconnect, and history.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// CreateSession godoc
// POST /api/v1/exam/session
// Builds a session with freshly sampled questions. The timer does not
// run until the citizen starts the exam.
func (h *ExamHandler) CreateSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	// Body is optional: no payload means the default language.
	var req model.StartExamRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	session, err := h.examService.CreateSession(c.Request.Context(), claims.UserID, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKYCRequired):
			response.Fail(c, http.StatusForbidden, response.ErrKYCRequired)
		case errors.Is(err, service.ErrAlreadyPassed):
			response.Fail(c, http.StatusConflict, response.ErrExamAlreadyPassed)
		case errors.Is(err, exam.ErrSessionActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionInProgress)
		case errors.Is(err, exam.ErrNoQuestions):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session.State()})
}

// StartSession godoc
// POST /api/v1/exam/session/start
// Starts the countdown. Idempotent calls after the first fail.
func (h *ExamHandler) StartSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, ok := h.examService.Session(claims.UserID)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
		return
	}

	if err := session.Start(); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrSessionInProgress)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session.State()})
}

// GetSession godoc
// GET /api/v1/exam/session
// Returns the current session snapshot, used on reconnect.
func (h *ExamHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, ok := h.examService.Session(claims.UserID)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session.State()})
}

// AbandonSession godoc
// DELETE /api/v1/exam/session
// Discards an unstarted or in-progress session without grading it.
func (h *ExamHandler) AbandonSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	h.examService.Abandon(claims.UserID)
	response.Success(c, http.StatusOK, gin.H{"abandoned": true})
}

// ListResults godoc
// GET /api/v1/exam/results
// Returns the citizen's attempt history, newest first.
func (h *ExamHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.examService.Results(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetLicence godoc
// GET /api/v1/exam/licence
// Returns the citizen's licence record, pending or issued.
func (h *ExamHandler) GetLicence(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	licence, err := h.examService.Licence(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoLicence) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"licence": licence})
}

// Practice godoc
// POST /api/v1/exam/practice
// Samples an untimed practice round with answers included.
func (h *ExamHandler) Practice(c *gin.Context) {
	var req model.StartExamRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	round, err := h.examService.Practice(c.Request.Context(), req.Language)
	if err != nil {
		if errors.Is(err, exam.ErrNoQuestions) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrNoQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, round)
}
