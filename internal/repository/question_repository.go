package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saralgov/licence-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByLanguage retrieves the full question pool for a language.
// An empty language returns every question.
func (r *QuestionRepository) ListByLanguage(ctx context.Context, language string) ([]model.Question, error) {
	query := `SELECT id, language, prompt_text, prompt_image_url, options, correct_index, category
	          FROM questions`
	args := []any{}
	if language != "" {
		query += ` WHERE language = $1`
		args = append(args, language)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Language, &q.Text, &q.ImageURL, &q.Options, &q.CorrectIndex, &q.Category); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, language, prompt_text, prompt_image_url, options, correct_index, category
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Language, &q.Text, &q.ImageURL, &q.Options, &q.CorrectIndex, &q.Category)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListPaginated retrieves questions for the admin screen, newest first.
func (r *QuestionRepository) ListPaginated(ctx context.Context, language string, limit, offset int) ([]model.Question, int, error) {
	where := ""
	args := []any{}
	if language != "" {
		where = ` WHERE language = $1`
		args = append(args, language)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, language, prompt_text, prompt_image_url, options, correct_index, category
	          FROM questions` + where + ` ORDER BY created_at DESC`
	if language != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Language, &q.Text, &q.ImageURL, &q.Options, &q.CorrectIndex, &q.Category); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (language, prompt_text, prompt_image_url, options, correct_index, category)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		q.Language, q.Text, q.ImageURL, q.Options, q.CorrectIndex, q.Category,
	).Scan(&q.ID)
}

// Update replaces a question's fields.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET language = $1, prompt_text = $2, prompt_image_url = $3,
		     options = $4, correct_index = $5, category = $6, updated_at = NOW()
		 WHERE id = $7`,
		q.Language, q.Text, q.ImageURL, q.Options, q.CorrectIndex, q.Category, q.ID)
	return err
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}
