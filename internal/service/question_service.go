package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/saralgov/licence-backend/internal/config"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
	"github.com/saralgov/licence-backend/internal/response"
)

// Question validation errors.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrBadOption        = errors.New("each option needs text or an image")
	ErrBadPrompt        = errors.New("question needs prompt text or an image")
	ErrBadIndex         = errors.New("correct_index out of range")
)

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// List retrieves questions with pagination, optionally filtered by language.
func (s *QuestionService) List(ctx context.Context, language string, page, perPage int) ([]model.Question, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	questions, total, err := s.questionRepo.ListPaginated(ctx, language, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return questions, pagination, nil
}

// Get retrieves a single question.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// Create validates and stores a new question.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		Language:     req.Language,
		Text:         req.Text,
		ImageURL:     req.ImageURL,
		Options:      req.Options,
		CorrectIndex: *req.CorrectIndex,
		Category:     req.Category,
	}
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	s.invalidatePools(ctx, q.Language)
	return q, nil
}

// Update applies a partial edit to an existing question.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldLanguage := q.Language
	if req.Language != "" {
		q.Language = req.Language
	}
	if req.Text != "" || req.ImageURL != "" {
		q.Text = req.Text
		q.ImageURL = req.ImageURL
	}
	if req.Options != nil {
		q.Options = req.Options
	}
	if req.CorrectIndex != nil {
		q.CorrectIndex = *req.CorrectIndex
	}
	if req.Category != "" {
		q.Category = req.Category
	}

	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	s.invalidatePools(ctx, oldLanguage, q.Language)
	return q, nil
}

// Delete removes a question. Live sessions that already sampled it keep
// their in-memory copy until they finish.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidatePools(ctx, q.Language)
	return nil
}

// invalidatePools drops the cached question pools touched by a write.
// The unfiltered pool is always dropped alongside the language pools.
func (s *QuestionService) invalidatePools(ctx context.Context, languages ...string) {
	keys := []string{config.CacheKey.QuestionPoolKey("")}
	for _, lang := range languages {
		keys = append(keys, config.CacheKey.QuestionPoolKey(lang))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate question pool cache")
	}
}

func validateQuestion(q *model.Question) error {
	if q.Text == "" && q.ImageURL == "" {
		return ErrBadPrompt
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ErrBadIndex
	}
	for _, opt := range q.Options {
		if opt.Text == "" && opt.ImageURL == "" {
			return ErrBadOption
		}
	}
	return nil
}
