package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saralgov/licence-backend/internal/model"
)

// ExamResultRepository handles the append-only exam outcome store.
type ExamResultRepository struct {
	pool *pgxpool.Pool
}

// NewExamResultRepository creates a new ExamResultRepository.
func NewExamResultRepository(pool *pgxpool.Pool) *ExamResultRepository {
	return &ExamResultRepository{pool: pool}
}

// Create inserts one exam result. Results are never updated.
func (r *ExamResultRepository) Create(ctx context.Context, res *model.ExamResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_results (id, user_id, status, score, categories, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		res.ID, res.UserID, res.Status, res.Score, res.Categories, res.CompletedAt)
	return err
}

// ListByUser retrieves a citizen's attempts, newest first.
func (r *ExamResultRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, status, score, categories, completed_at
		 FROM exam_results WHERE user_id = $1
		 ORDER BY completed_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		var res model.ExamResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.Status, &res.Score, &res.Categories, &res.CompletedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// HasPassed reports whether the user has at least one passing attempt.
func (r *ExamResultRepository) HasPassed(ctx context.Context, userID uuid.UUID) (bool, error) {
	var passed bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exam_results WHERE user_id = $1 AND status = $2)`,
		userID, model.ResultStatusPassed,
	).Scan(&passed)
	return passed, err
}

// ListPaginated retrieves attempts for the back office, newest first.
func (r *ExamResultRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.ExamResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exam_results`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, status, score, categories, completed_at
		 FROM exam_results
		 ORDER BY completed_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		var res model.ExamResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.Status, &res.Score, &res.Categories, &res.CompletedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}
