package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saralgov/licence-backend/internal/model"
)

// LicenceRepository handles licence data access.
type LicenceRepository struct {
	pool *pgxpool.Pool
}

// NewLicenceRepository creates a new LicenceRepository.
func NewLicenceRepository(pool *pgxpool.Pool) *LicenceRepository {
	return &LicenceRepository{pool: pool}
}

// CreatePending records a pass-triggered licence awaiting admin
// verification. At most one pending licence per user.
func (r *LicenceRepository) CreatePending(ctx context.Context, userID, examResultID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO licences (user_id, exam_result_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) WHERE status = 'pending' DO NOTHING`,
		userID, examResultID, model.LicenceStatusPending)
	return err
}

// GetByUser retrieves the user's licence record, if any.
func (r *LicenceRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Licence, error) {
	l := &model.Licence{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, exam_result_id, licence_number, status, created_at, issued_at
		 FROM licences
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, userID,
	).Scan(&l.ID, &l.UserID, &l.ExamResultID, &l.LicenceNumber, &l.Status, &l.CreatedAt, &l.IssuedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListPending retrieves licences awaiting issuance, oldest first.
func (r *LicenceRepository) ListPending(ctx context.Context, limit, offset int) ([]model.Licence, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM licences WHERE status = $1`, model.LicenceStatusPending,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, exam_result_id, licence_number, status, created_at, issued_at
		 FROM licences
		 WHERE status = $1
		 ORDER BY created_at ASC
		 LIMIT $2 OFFSET $3`, model.LicenceStatusPending, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var licences []model.Licence
	for rows.Next() {
		var l model.Licence
		if err := rows.Scan(&l.ID, &l.UserID, &l.ExamResultID, &l.LicenceNumber, &l.Status, &l.CreatedAt, &l.IssuedAt); err != nil {
			return nil, 0, err
		}
		licences = append(licences, l)
	}
	return licences, total, rows.Err()
}

// Issue assigns a licence number to a pending licence. Returns false
// when the licence was not pending.
func (r *LicenceRepository) Issue(ctx context.Context, id uuid.UUID, number string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE licences
		 SET status = $1, licence_number = $2, issued_at = $3
		 WHERE id = $4 AND status = $5`,
		model.LicenceStatusIssued, number, time.Now(), id, model.LicenceStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
