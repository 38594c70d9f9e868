package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/saralgov/licence-backend/internal/config"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ResultWorker drains the result retry queue into Postgres. Results
// land on the queue only when the direct write at submission time
// failed, so the queue is empty in steady state. Inserts are keyed by
// result ID, so a result that slips through both paths is stored once.
type ResultWorker struct {
	pool        *pgxpool.Pool
	rdb         *redis.Client
	licenceRepo *repository.LicenceRepository
	log         zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, licenceRepo *repository.LicenceRepository, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool:        pool,
		rdb:         rdb,
		licenceRepo: licenceRepo,
		log:         log.With().Str("component", "result_worker").Logger(),
	}
}

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*model.ExamResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(batch)
			return
		default:
		}

		item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
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

		if len(item) < 2 {
			continue
		}

		var res model.ExamResult
		if err := json.Unmarshal([]byte(item[1]), &res); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", item[1]).Msg("Discarding malformed result payload")
			continue
		}

		batch = append(batch, &res)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue.
func (w *ResultWorker) flushSafe(ctx context.Context, batch []*model.ExamResult) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
		return
	}

	w.openLicences(ctx, batch)
}

// bulkInsert copies the whole batch in one round trip. A duplicate
// result ID fails the copy; the fallback path absorbs duplicates.
func (w *ResultWorker) bulkInsert(ctx context.Context, batch []*model.ExamResult) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, res := range batch {
		rows = append(rows, []interface{}{
			res.ID, res.UserID, res.Status, res.Score, res.Categories, res.CompletedAt,
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"exam_results"},
		[]string{"id", "user_id", "status", "score", "categories", "completed_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *ResultWorker) fallbackInsert(ctx context.Context, batch []*model.ExamResult) {
	requeueList := make([]*model.ExamResult, 0)
	persisted := make([]*model.ExamResult, 0, len(batch))

	for _, res := range batch {
		_, err := w.pool.Exec(ctx,
			`INSERT INTO exam_results (id, user_id, status, score, categories, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO NOTHING`,
			res.ID, res.UserID, res.Status, res.Score, res.Categories, res.CompletedAt,
		)
		if err != nil {
			w.log.Error().Err(err).Str("result_id", res.ID.String()).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, res)
			continue
		}
		persisted = append(persisted, res)
	}

	w.openLicences(ctx, persisted)

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

// openLicences opens a pending licence for each passed result. The
// partial unique index on licences makes this idempotent.
func (w *ResultWorker) openLicences(ctx context.Context, batch []*model.ExamResult) {
	for _, res := range batch {
		if res.Status != model.ResultStatusPassed {
			continue
		}
		if err := w.licenceRepo.CreatePending(ctx, res.UserID, res.ID); err != nil {
			w.log.Error().Err(err).Str("user_id", res.UserID.String()).Msg("Failed to open pending licence")
		}
	}
}

func (w *ResultWorker) requeue(ctx context.Context, items []*model.ExamResult) {
	pipe := w.rdb.Pipeline()
	for _, res := range items {
		data, _ := json.Marshal(res)
		pipe.RPush(ctx, config.WorkerKey.PersistResultsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue results to Redis. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed results back to Redis")
	// Avoid thrashing if the DB is down hard.
	time.Sleep(2 * time.Second)
}

func (w *ResultWorker) shutdown(batch []*model.ExamResult) {
	w.log.Info().Msg("Worker stopping, flushing remaining batch...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(batch) > 0 {
		w.flushSafe(shutdownCtx, batch)
	}
}
