package exam

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/saralgov/licence-backend/internal/model"
)

// Config holds the exam rules. Zero values fall back to the published
// defaults.
type Config struct {
	TotalQuestions       int
	Duration             time.Duration
	PassingScore         int
	MaxIntegrityWarnings int
}

func (c Config) withDefaults() Config {
	if c.TotalQuestions <= 0 {
		c.TotalQuestions = 20
	}
	if c.Duration <= 0 {
		c.Duration = 30 * time.Minute
	}
	if c.PassingScore <= 0 {
		c.PassingScore = 70
	}
	if c.MaxIntegrityWarnings <= 0 {
		c.MaxIntegrityWarnings = 2
	}
	return c
}

// QuestionSource provides the question pool for a language. An empty
// language returns the unfiltered pool.
type QuestionSource interface {
	Pool(ctx context.Context, language string) ([]model.Question, error)
}

// ResultSink persists one completed attempt. Implementations own their
// retry strategy; an error return means the result could not be stored
// at all.
type ResultSink interface {
	Save(ctx context.Context, result *model.ExamResult) error
}

// Manager owns the active sessions, at most one per user. A second
// session request while one is in progress is rejected; a session that
// was created but never started is replaced, which makes question
// loading idempotent for retries.
type Manager struct {
	cfg    Config
	source QuestionSource
	sink   ResultSink
	clock  Clock
	log    zerolog.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session manager. Passing a nil rng selects a
// crypto-seeded source; tests inject a fixed-seed rand.Rand for
// reproducible sampling.
func NewManager(source QuestionSource, sink ResultSink, clock Clock, rng *rand.Rand, cfg Config, log zerolog.Logger) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewPCG(cryptoSeed(), cryptoSeed()))
	}
	return &Manager{
		cfg:      cfg.withDefaults(),
		source:   source,
		sink:     sink,
		clock:    clock,
		log:      log.With().Str("component", "exam_manager").Logger(),
		rng:      rng,
		sessions: make(map[uuid.UUID]*Session),
	}
}

func cryptoSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// CreateSession loads a question set for the user's language and
// registers a fresh session. The pool lookup falls back from the
// preferred language to the alternate, then to any language; only when
// every pool is empty does it fail with ErrNoQuestions, which is
// recoverable by retrying.
func (m *Manager) CreateSession(ctx context.Context, userID uuid.UUID, language string) (*Session, error) {
	if language != model.LanguageEnglish && language != model.LanguageNepali {
		language = model.LanguageEnglish
	}

	pool, err := m.loadPool(ctx, language)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[userID]; ok {
		if existing.Status() == StatusInProgress {
			return nil, ErrSessionActive
		}
		existing.Close()
	}

	questions := sample(pool, m.cfg.TotalQuestions, m.rng)
	s := newSession(userID, language, questions, m.cfg, m.clock, m.sink, m.log)
	s.onClose = func(sess *Session) { go m.remove(userID, sess) }
	m.sessions[userID] = s

	m.log.Info().
		Str("user_id", userID.String()).
		Str("language", language).
		Int("pool", len(pool)).
		Int("selected", len(questions)).
		Msg("Session created")

	return s, nil
}

func (m *Manager) loadPool(ctx context.Context, language string) ([]model.Question, error) {
	for _, lang := range []string{language, model.AlternateLanguage(language), ""} {
		pool, err := m.source.Pool(ctx, lang)
		if err != nil {
			return nil, fmt.Errorf("load question pool: %w", err)
		}
		if len(pool) > 0 {
			return pool, nil
		}
	}
	return nil, ErrNoQuestions
}

// Session returns the user's registered session, if any.
func (m *Manager) Session(userID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Abandon closes and removes the user's session without persisting
// anything. Safe to call when no session exists.
func (m *Manager) Abandon(userID uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

func (m *Manager) remove(userID uuid.UUID, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[userID] == s {
		delete(m.sessions, userID)
	}
}

// Sample exposes the session sampling for stateless uses such as
// practice mode.
func (m *Manager) Sample(pool []model.Question, n int) []model.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sample(pool, n, m.rng)
}
