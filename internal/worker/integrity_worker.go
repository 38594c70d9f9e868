package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/saralgov/licence-backend/internal/config"
)

const (
	IntegrityBatchSize    = 50
	IntegrityBatchTimeout = 2 * time.Second
	IntegrityPollTimeout  = 1 * time.Second
)

// IntegrityWorker drains queued focus-loss and forced-submit events
// into the integrity_events audit table. Events are advisory: the
// session already acted on them, this is the permanent record.
type IntegrityWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewIntegrityWorker creates a new IntegrityWorker.
func NewIntegrityWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *IntegrityWorker {
	return &IntegrityWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "integrity_worker").Logger(),
	}
}

type integrityPayload struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	EventType string `json:"event_type"`
	Warnings  int    `json:"warnings"`
	Timestamp int64  `json:"timestamp"`
}

func (w *IntegrityWorker) Start(ctx context.Context) {
	w.log.Info().Msg("IntegrityWorker started")

	buffer := make([]*integrityPayload, 0, IntegrityBatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 &&
			(len(buffer) >= IntegrityBatchSize || time.Since(lastFlush) >= IntegrityBatchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, IntegrityPollTimeout, config.WorkerKey.IntegrityEventsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var payload integrityPayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed integrity event")
			continue
		}

		buffer = append(buffer, &payload)
	}
}

func (w *IntegrityWorker) flushSafe(ctx context.Context, batch []*integrityPayload) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *IntegrityWorker) bulkInsert(ctx context.Context, batch []*integrityPayload) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, p := range batch {
		userID, sessionID, err := p.ids()
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			userID, sessionID, p.EventType, p.Warnings, time.Unix(p.Timestamp, 0),
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"integrity_events"},
		[]string{"user_id", "session_id", "event_type", "warnings", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *IntegrityWorker) fallbackInsert(ctx context.Context, batch []*integrityPayload) {
	requeueList := make([]*integrityPayload, 0)

	for _, p := range batch {
		userID, sessionID, err := p.ids()
		if err != nil {
			w.log.Error().Str("user_id", p.UserID).Msg("Dropping integrity event with invalid UUID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO integrity_events (user_id, session_id, event_type, warnings, recorded_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			userID, sessionID, p.EventType, p.Warnings, time.Unix(p.Timestamp, 0),
		)
		if err != nil {
			w.log.Error().Err(err).Str("user_id", p.UserID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *IntegrityWorker) requeue(ctx context.Context, items []*integrityPayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.IntegrityEventsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue integrity events. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed integrity events back to Redis")
	time.Sleep(2 * time.Second)
}

func (w *IntegrityWorker) shutdown(buffer []*integrityPayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}

func (p *integrityPayload) ids() (uuid.UUID, uuid.UUID, error) {
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionID, err := uuid.Parse(p.SessionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, sessionID, nil
}
