package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/saralgov/licence-backend/internal/exam"
	"github.com/saralgov/licence-backend/internal/middleware"
	"github.com/saralgov/licence-backend/internal/service"
	ws "github.com/saralgov/licence-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// examConn serializes writes to one WebSocket connection; the event
// pump and the read loop both write to it.
type examConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *examConn) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ws.WriteTyped(c.conn, v)
}

func (c *examConn) writeError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ws.WriteError(c.conn, msg)
}

// WSHandler streams a live exam session over WebSocket: countdown
// ticks and integrity events flow down, answers and navigation flow
// up. Disconnecting does not pause the session; the countdown keeps
// running server-side and the client reconnects into the same stream.
type WSHandler struct {
	examService  *service.ExamService
	integrityLog *service.IntegrityLog
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examService *service.ExamService, integrityLog *service.IntegrityLog, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examService:  examService,
		integrityLog: integrityLog,
		log:          log.With().Str("component", "ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exam/stream?token=...
// Upgrades to WebSocket and attaches to the citizen's live session.
func (h *WSHandler) ExamStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	session, ok := h.examService.Session(claims.UserID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active exam session"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer rawConn.Close()

	conn := &examConn{conn: rawConn}
	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("session_id", session.ID.String()).
		Logger()
	wsLog.Info().Msg("Citizen connected")

	// Event pump: bridges the session's event stream onto the wire.
	// It exits when the session ends and closes the connection so the
	// read loop unblocks.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range session.Events() {
			if err := conn.write(translateEvent(session, ev)); err != nil {
				return
			}
			if ev.Type == exam.EventSubmitted {
				if ev.Outcome != nil && ev.Outcome.Trigger == exam.TriggerIntegrity {
					h.integrityLog.Record(context.Background(), session.UserID, session.ID,
						service.IntegrityEventForcedSubmit, ev.Warnings)
				}
				return
			}
		}
	}()
	defer func() {
		rawConn.Close()
		<-done
	}()

	for {
		_, raw, err := rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			conn.writeError("malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, session, raw)
		case ws.ActionGoTo:
			h.handleGoTo(conn, session, raw)
		case ws.ActionFocusLost:
			h.handleFocusLost(conn, session)
		case ws.ActionSubmit:
			if h.handleSubmit(conn, wsLog, session, raw) {
				return
			}
		case ws.ActionPing:
			conn.write(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			conn.writeError("unknown action: " + string(envelope.Action))
		}
	}
}

func (h *WSHandler) handleAnswer(conn *examConn, session *exam.Session, raw []byte) {
	var msg ws.AnswerRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		conn.writeError("malformed answer")
		return
	}

	questionID, err := uuid.Parse(msg.QuestionID)
	if err != nil {
		conn.writeError("invalid question_id format")
		return
	}

	if err := session.SelectAnswer(questionID, msg.Option); err != nil {
		conn.writeError(err.Error())
		return
	}

	conn.write(ws.AnswerSavedResponse{
		Event:      ws.EventAnswerSaved,
		QuestionID: msg.QuestionID,
		Option:     msg.Option,
	})
}

func (h *WSHandler) handleGoTo(conn *examConn, session *exam.Session, raw []byte) {
	var msg ws.GoToRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		conn.writeError("malformed goto")
		return
	}
	session.GoTo(msg.Index)
}

func (h *WSHandler) handleFocusLost(conn *examConn, session *exam.Session) {
	// The session decides whether this is a warning or the final
	// strike; either way the result arrives through the event pump.
	session.FocusLost()
	h.integrityLog.Record(context.Background(), session.UserID, session.ID,
		service.IntegrityEventFocusLost, session.Warnings())
}

// handleSubmit grades the exam. Returns true when the session ended and
// the stream should close.
func (h *WSHandler) handleSubmit(conn *examConn, log zerolog.Logger, session *exam.Session, raw []byte) bool {
	var msg ws.SubmitRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		conn.writeError("malformed submit")
		return false
	}
	if !msg.Confirm {
		conn.writeError("submit requires confirm: true")
		return false
	}

	if _, err := session.Submit(); err != nil {
		switch {
		case errors.Is(err, exam.ErrNotStarted):
			conn.writeError("exam not started")
		case errors.Is(err, exam.ErrAlreadySubmitted):
			conn.writeError("exam already submitted")
		default:
			log.Error().Err(err).Msg("Submit failed")
			conn.writeError("submit failed")
		}
		return false
	}

	// The submitted event, outcome included, goes out via the pump.
	return true
}

// translateEvent maps a session event onto the wire schema.
func translateEvent(session *exam.Session, ev exam.Event) interface{} {
	switch ev.Type {
	case exam.EventTick:
		return ws.TickResponse{Event: ws.EventTick, Remaining: ev.Remaining}
	case exam.EventIntegrityWarning:
		return ws.WarningResponse{Event: ws.EventWarning, Warnings: ev.Warnings, Limit: session.WarningLimit()}
	case exam.EventSubmitted:
		out := ev.Outcome
		return ws.SubmittedResponse{
			Event:         ws.EventSubmitted,
			Trigger:       string(out.Trigger),
			Correct:       out.Correct,
			Total:         out.Total,
			Score:         out.Score,
			Passed:        out.Passed,
			PersistFailed: out.PersistFailed,
		}
	default:
		return ws.ErrorResponse{Event: ws.EventError, Error: "unknown event"}
	}
}
