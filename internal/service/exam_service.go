package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/saralgov/licence-backend/internal/config"
	"github.com/saralgov/licence-backend/internal/exam"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
	"github.com/saralgov/licence-backend/internal/response"
)

// Exam eligibility errors.
var (
	ErrKYCRequired   = errors.New("identity verification required before taking the exam")
	ErrAlreadyPassed = errors.New("exam already passed")
	ErrNoLicence     = errors.New("no licence on record")
)

// questionPoolTTL bounds staleness of the cached pools. Writes through
// QuestionService invalidate eagerly; the TTL covers out-of-band edits.
const questionPoolTTL = 5 * time.Minute

// ─── Question source ───

// QuestionPool serves full question pools, backed by Postgres with a
// Redis cache in front. It satisfies the session manager's source
// interface.
type QuestionPool struct {
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuestionPool creates a new QuestionPool.
func NewQuestionPool(questionRepo *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *QuestionPool {
	return &QuestionPool{
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "question_pool").Logger(),
	}
}

// Pool returns every question for a language ("" for all), hitting the
// cache first. Cache failures fall through to Postgres.
func (p *QuestionPool) Pool(ctx context.Context, language string) ([]model.Question, error) {
	key := config.CacheKey.QuestionPoolKey(language)

	cached, err := p.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var pool []model.Question
		if jsonErr := json.Unmarshal(cached, &pool); jsonErr == nil {
			return pool, nil
		}
		p.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		p.log.Warn().Err(err).Msg("question pool cache read failed")
	}

	pool, err := p.questionRepo.ListByLanguage(ctx, language)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(pool); err == nil {
		if err := p.rdb.Set(ctx, key, raw, questionPoolTTL).Err(); err != nil {
			p.log.Warn().Err(err).Msg("question pool cache write failed")
		}
	}
	return pool, nil
}

// ─── Result sink ───

// ResultRecorder persists graded exam results. A direct Postgres write
// is attempted first; on failure the result is queued in Redis for the
// persistence worker to retry, so a database blip never loses a
// submission. Passing results also open a pending licence.
type ResultRecorder struct {
	resultRepo  *repository.ExamResultRepository
	licenceRepo *repository.LicenceRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewResultRecorder creates a new ResultRecorder.
func NewResultRecorder(resultRepo *repository.ExamResultRepository, licenceRepo *repository.LicenceRepository, rdb *redis.Client, log zerolog.Logger) *ResultRecorder {
	return &ResultRecorder{
		resultRepo:  resultRepo,
		licenceRepo: licenceRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "result_recorder").Logger(),
	}
}

// Save writes one exam result, falling back to the retry queue when
// Postgres is unavailable. An error is returned only when both the
// database and the queue reject the result.
func (r *ResultRecorder) Save(ctx context.Context, res *model.ExamResult) error {
	if err := r.resultRepo.Create(ctx, res); err != nil {
		r.log.Error().Err(err).Str("result_id", res.ID.String()).Msg("direct result write failed, queueing for retry")
		if qErr := r.enqueue(ctx, res); qErr != nil {
			return fmt.Errorf("persist result: %w", err)
		}
		return nil
	}

	if res.Status == model.ResultStatusPassed {
		if err := r.licenceRepo.CreatePending(ctx, res.UserID, res.ID); err != nil {
			// Result is safe; licence issuance is reconciled by the
			// persistence worker on its next pass.
			r.log.Error().Err(err).Str("user_id", res.UserID.String()).Msg("failed to open pending licence")
		}
	}
	return nil
}

func (r *ResultRecorder) enqueue(ctx context.Context, res *model.ExamResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return r.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err()
}

// ─── Exam service ───

// ExamService orchestrates live exam sessions: eligibility checks,
// session lifecycle, result history, and untimed practice rounds.
type ExamService struct {
	cfg          *config.Config
	manager      *exam.Manager
	kycRepo      *repository.KYCRepository
	resultRepo   *repository.ExamResultRepository
	licenceRepo  *repository.LicenceRepository
	questionPool *QuestionPool
}

// NewExamService creates a new ExamService.
func NewExamService(cfg *config.Config, manager *exam.Manager, kycRepo *repository.KYCRepository, resultRepo *repository.ExamResultRepository, licenceRepo *repository.LicenceRepository, questionPool *QuestionPool) *ExamService {
	return &ExamService{
		cfg:          cfg,
		manager:      manager,
		kycRepo:      kycRepo,
		resultRepo:   resultRepo,
		licenceRepo:  licenceRepo,
		questionPool: questionPool,
	}
}

// CreateSession builds a new exam session for an eligible citizen.
// Requires an approved KYC submission and no prior passing attempt.
func (s *ExamService) CreateSession(ctx context.Context, userID uuid.UUID, language string) (*exam.Session, error) {
	approved, err := s.kycRepo.IsApproved(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, ErrKYCRequired
	}

	passed, err := s.resultRepo.HasPassed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if passed {
		return nil, ErrAlreadyPassed
	}

	return s.manager.CreateSession(ctx, userID, language)
}

// Session returns the citizen's live session, if any.
func (s *ExamService) Session(userID uuid.UUID) (*exam.Session, bool) {
	return s.manager.Session(userID)
}

// Abandon discards an unfinished session without grading it.
func (s *ExamService) Abandon(userID uuid.UUID) {
	s.manager.Abandon(userID)
}

// Results returns a citizen's attempt history, newest first.
func (s *ExamService) Results(ctx context.Context, userID uuid.UUID) ([]model.ExamResult, error) {
	results, err := s.resultRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.ExamResult{}
	}
	return results, nil
}

// Licence returns the citizen's licence record.
func (s *ExamService) Licence(ctx context.Context, userID uuid.UUID) (*model.Licence, error) {
	licence, err := s.licenceRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoLicence
		}
		return nil, err
	}
	return licence, nil
}

// ListAllResults returns exam results across all citizens for the back
// office, newest first.
func (s *ExamService) ListAllResults(ctx context.Context, page, perPage int) ([]model.ExamResult, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	results, total, err := s.resultRepo.ListPaginated(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if results == nil {
		results = []model.ExamResult{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return results, pagination, nil
}

// PendingLicences returns licences awaiting issuance, oldest first.
func (s *ExamService) PendingLicences(ctx context.Context, page, perPage int) ([]model.Licence, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	licences, total, err := s.licenceRepo.ListPending(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if licences == nil {
		licences = []model.Licence{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return licences, pagination, nil
}

// ErrLicenceNotPending is returned when issuing a licence that is
// unknown or already issued.
var ErrLicenceNotPending = errors.New("licence is not pending")

// IssueLicence assigns a licence number to a pending licence.
func (s *ExamService) IssueLicence(ctx context.Context, id uuid.UUID, number string) error {
	issued, err := s.licenceRepo.Issue(ctx, id, number)
	if err != nil {
		return err
	}
	if !issued {
		return ErrLicenceNotPending
	}
	return nil
}

// PracticeRound is an untimed sample of questions with answers included,
// so the client can grade locally as the citizen works through it.
type PracticeRound struct {
	Questions []model.Question `json:"questions"`
}

// Practice samples a fresh untimed round from the question pool using
// the same language fallback as the real exam. Unlike live sessions the
// correct answers are included: practice is a study aid, not an exam.
func (s *ExamService) Practice(ctx context.Context, language string) (*PracticeRound, error) {
	language = normalizeLanguage(language)

	var pool []model.Question
	for _, lang := range []string{language, model.AlternateLanguage(language), ""} {
		var err error
		pool, err = s.questionPool.Pool(ctx, lang)
		if err != nil {
			return nil, err
		}
		if len(pool) > 0 {
			break
		}
	}
	if len(pool) == 0 {
		return nil, exam.ErrNoQuestions
	}

	questions := s.manager.Sample(pool, s.cfg.PracticeQuestions)
	return &PracticeRound{Questions: questions}, nil
}

func normalizeLanguage(lang string) string {
	if lang != model.LanguageEnglish && lang != model.LanguageNepali {
		return model.LanguageEnglish
	}
	return lang
}
