package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/saralgov/licence-backend/internal/config"
)

// Integrity event types written to the audit trail.
const (
	IntegrityEventFocusLost    = "focus_lost"
	IntegrityEventForcedSubmit = "forced_submit"
)

// IntegrityLog queues integrity events for the audit worker. Recording
// is fire-and-forget: the session has already warned or auto-submitted,
// so a failed queue write costs audit detail, never enforcement.
type IntegrityLog struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewIntegrityLog creates a new IntegrityLog.
func NewIntegrityLog(rdb *redis.Client, log zerolog.Logger) *IntegrityLog {
	return &IntegrityLog{
		rdb: rdb,
		log: log.With().Str("component", "integrity_log").Logger(),
	}
}

// Record queues one integrity event.
func (l *IntegrityLog) Record(ctx context.Context, userID, sessionID uuid.UUID, eventType string, warnings int) {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":    userID.String(),
		"session_id": sessionID.String(),
		"event_type": eventType,
		"warnings":   warnings,
		"timestamp":  time.Now().Unix(),
	})
	if err := l.rdb.RPush(ctx, config.WorkerKey.IntegrityEventsQueue, payload).Err(); err != nil {
		l.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to queue integrity event")
	}
}
