package exam

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saralgov/licence-backend/internal/model"
)

// manualClock drives the countdown by hand. Tick sends are unbuffered,
// so each Tick call returns only after the countdown goroutine has
// picked up the previous one.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	ticker *manualTicker
}

type manualTicker struct {
	ch chan time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               {}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticker = &manualTicker{ch: make(chan time.Time)}
	return c.ticker
}

func (c *manualClock) Tick() {
	c.mu.Lock()
	t := c.ticker
	c.mu.Unlock()
	t.ch <- time.Time{}
}

type stubSource struct {
	pools map[string][]model.Question
	err   error
}

func (s *stubSource) Pool(_ context.Context, language string) ([]model.Question, error) {
	if s.err != nil {
		return nil, s.err
	}
	if language == "" {
		var all []model.Question
		for _, pool := range s.pools {
			all = append(all, pool...)
		}
		return all, nil
	}
	return s.pools[language], nil
}

type stubSink struct {
	mu      sync.Mutex
	results []*model.ExamResult
	err     error
}

func (s *stubSink) Save(_ context.Context, r *model.ExamResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.results = append(s.results, r)
	return nil
}

func (s *stubSink) saved() []*model.ExamResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.ExamResult(nil), s.results...)
}

func makeQuestions(lang string, n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:       uuid.New(),
			Language: lang,
			Text:     "q",
			Options: []model.Option{
				{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"},
			},
			CorrectIndex: i % model.OptionCount,
		}
	}
	return qs
}

func testManager(source QuestionSource, sink ResultSink, clock Clock, cfg Config) *Manager {
	rng := rand.New(rand.NewPCG(7, 13))
	return NewManager(source, sink, clock, rng, cfg, zerolog.Nop())
}

func startedSession(t *testing.T, m *Manager, clock *manualClock) *Session {
	t.Helper()
	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	return s
}

// nextEvent reads one event with a timeout so a broken stream fails
// the test instead of hanging it.
func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case e, ok := <-s.Events():
		require.True(t, ok, "event stream closed unexpectedly")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return Event{}
	}
}

func TestManualSubmitAllCorrect(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 4)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{}
	clock := newManualClock()
	m := testManager(source, sink, clock, Config{TotalQuestions: 4, Duration: time.Hour})

	s := startedSession(t, m, clock)
	require.Len(t, s.State().Questions, 4)

	for _, q := range pool {
		require.NoError(t, s.SelectAnswer(q.ID, q.CorrectIndex))
	}

	outcome, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 100, outcome.Score)
	assert.True(t, outcome.Passed)
	assert.Equal(t, TriggerManual, outcome.Trigger)
	assert.Equal(t, StatusSubmitted, s.Status())

	saved := sink.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, model.ResultStatusPassed, saved[0].Status)
	assert.Equal(t, 100, saved[0].Score)
	assert.Equal(t, clock.Now(), saved[0].CompletedAt)
	assert.NotNil(t, saved[0].Categories)
	assert.Empty(t, saved[0].Categories)
}

func TestSixOfTenFails(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 10)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{}
	m := testManager(source, sink, newManualClock(), Config{TotalQuestions: 10, Duration: time.Hour})

	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	// Answer six correctly, leave the rest untouched; absent answers
	// count as incorrect and never error.
	for i, q := range pool {
		if i < 6 {
			require.NoError(t, s.SelectAnswer(q.ID, q.CorrectIndex))
		}
	}

	outcome, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 60, outcome.Score)
	assert.False(t, outcome.Passed)
	assert.Equal(t, 6, outcome.Correct)

	saved := sink.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, model.ResultStatusFailed, saved[0].Status)
}

func TestSubmitIsExactlyOnce(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 4)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{}
	m := testManager(source, sink, newManualClock(), Config{TotalQuestions: 4, Duration: time.Hour})

	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	_, err = s.Submit()
	require.NoError(t, err)

	// A racing second trigger of any kind is a rejected no-op.
	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.False(t, s.tick())
	s.FocusLost()

	assert.Len(t, sink.saved(), 1)
}

func TestTimerExpiryAutoSubmits(t *testing.T) {
	const durationSec = 1800

	pool := makeQuestions(model.LanguageEnglish, 5)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{}
	clock := newManualClock()
	m := testManager(source, sink, clock, Config{TotalQuestions: 5, Duration: durationSec * time.Second})

	s := startedSession(t, m, clock)

	for i := 1; i < durationSec; i++ {
		clock.Tick()
		e := nextEvent(t, s)
		require.Equal(t, EventTick, e.Type)
		require.Equal(t, durationSec-i, e.Remaining)
	}

	clock.Tick()
	e := nextEvent(t, s)
	require.Equal(t, EventSubmitted, e.Type)
	require.NotNil(t, e.Outcome)
	assert.Equal(t, TriggerTimer, e.Outcome.Trigger)
	assert.Equal(t, 0, s.State().Remaining)
	assert.Len(t, sink.saved(), 1)

	// No further ticks after submission: the stream is closed.
	_, open := <-s.Events()
	assert.False(t, open)
}

func TestIntegrityThresholdForcesSubmit(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 4)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{}
	m := testManager(source, sink, newManualClock(), Config{TotalQuestions: 4, Duration: time.Hour, MaxIntegrityWarnings: 2})

	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	s.FocusLost()
	e := nextEvent(t, s)
	assert.Equal(t, EventIntegrityWarning, e.Type)
	assert.Equal(t, 1, e.Warnings)

	s.FocusLost()
	e = nextEvent(t, s)
	assert.Equal(t, EventIntegrityWarning, e.Type)
	assert.Equal(t, 2, e.Warnings)

	// The event after the max is an unconditional auto-submit, however
	// much time remains and however many questions are unanswered.
	s.FocusLost()
	e = nextEvent(t, s)
	require.Equal(t, EventSubmitted, e.Type)
	require.NotNil(t, e.Outcome)
	assert.Equal(t, TriggerIntegrity, e.Outcome.Trigger)
	assert.Equal(t, 0, e.Outcome.Score)
	assert.False(t, e.Outcome.Passed)
	assert.Len(t, sink.saved(), 1)
}

func TestSelectAnswerValidation(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 4)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{}
	m := testManager(source, sink, newManualClock(), Config{TotalQuestions: 4, Duration: time.Hour})

	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	q := pool[0]
	assert.ErrorIs(t, s.SelectAnswer(uuid.New(), 0), ErrUnknownQuestion)
	assert.ErrorIs(t, s.SelectAnswer(q.ID, -1), ErrOptionOutOfRange)
	assert.ErrorIs(t, s.SelectAnswer(q.ID, model.OptionCount), ErrOptionOutOfRange)
}

func TestReanswerLastWriteWins(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 1)
	pool[0].CorrectIndex = 2
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{}
	m := testManager(source, sink, newManualClock(), Config{TotalQuestions: 1, Duration: time.Hour})

	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	require.NoError(t, s.SelectAnswer(pool[0].ID, 0))
	require.NoError(t, s.SelectAnswer(pool[0].ID, 2))

	outcome, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 100, outcome.Score)
}

func TestNavigationClamps(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 5)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	m := testManager(source, &stubSink{}, newManualClock(), Config{TotalQuestions: 5, Duration: time.Hour})

	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	assert.Equal(t, 0, s.Previous())
	assert.Equal(t, 0, s.GoTo(-10))
	assert.Equal(t, 4, s.GoTo(99))
	assert.Equal(t, 4, s.Next())
	assert.Equal(t, 3, s.Previous())
	assert.Equal(t, 2, s.GoTo(2))
}

func TestLanguageFallback(t *testing.T) {
	enPool := makeQuestions(model.LanguageEnglish, 6)
	source := &stubSource{pools: map[string][]model.Question{
		model.LanguageEnglish: enPool,
		model.LanguageNepali:  nil,
	}}
	m := testManager(source, &stubSink{}, newManualClock(), Config{TotalQuestions: 6, Duration: time.Hour})

	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageNepali)
	require.NoError(t, err)

	state := s.State()
	require.Len(t, state.Questions, 6)
	for _, q := range state.Questions {
		assert.Equal(t, model.LanguageEnglish, q.Language)
	}
}

func TestEmptyPoolsAreRecoverable(t *testing.T) {
	source := &stubSource{pools: map[string][]model.Question{}}
	m := testManager(source, &stubSink{}, newManualClock(), Config{})

	userID := uuid.New()
	_, err := m.CreateSession(context.Background(), userID, model.LanguageNepali)
	assert.ErrorIs(t, err, ErrNoQuestions)

	// Retry after the pool is populated succeeds.
	source.pools[model.LanguageNepali] = makeQuestions(model.LanguageNepali, 3)
	s, err := m.CreateSession(context.Background(), userID, model.LanguageNepali)
	require.NoError(t, err)
	assert.Len(t, s.State().Questions, 3)
}

func TestSamplingIsDistinctAndFromPool(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 50)
	inPool := make(map[uuid.UUID]bool, len(pool))
	for _, q := range pool {
		inPool[q.ID] = true
	}
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	m := testManager(source, &stubSink{}, newManualClock(), Config{TotalQuestions: 20, Duration: time.Hour})

	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageEnglish)
	require.NoError(t, err)

	state := s.State()
	require.Len(t, state.Questions, 20)

	seen := make(map[uuid.UUID]bool, 20)
	for _, q := range state.Questions {
		assert.True(t, inPool[q.ID], "sampled question not in pool")
		assert.False(t, seen[q.ID], "duplicate question in sample")
		seen[q.ID] = true
	}
}

func TestSecondSessionRejectedWhileInProgress(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 4)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{}
	m := testManager(source, sink, newManualClock(), Config{TotalQuestions: 4, Duration: time.Hour})

	userID := uuid.New()
	s, err := m.CreateSession(context.Background(), userID, model.LanguageEnglish)
	require.NoError(t, err)

	// Before start, re-creation replaces the question set.
	s2, err := m.CreateSession(context.Background(), userID, model.LanguageEnglish)
	require.NoError(t, err)
	require.NotSame(t, s, s2)

	require.NoError(t, s2.Start())
	_, err = m.CreateSession(context.Background(), userID, model.LanguageEnglish)
	assert.ErrorIs(t, err, ErrSessionActive)

	_, err = s2.Submit()
	require.NoError(t, err)

	// Terminal sessions do not block a fresh attempt.
	_, err = m.CreateSession(context.Background(), userID, model.LanguageEnglish)
	assert.NoError(t, err)
}

func TestPersistFailureKeepsSessionSubmitted(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 4)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{err: errors.New("store unavailable")}
	m := testManager(source, sink, newManualClock(), Config{TotalQuestions: 4, Duration: time.Hour})

	s, err := m.CreateSession(context.Background(), uuid.New(), model.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	outcome, err := s.Submit()
	require.NoError(t, err)
	assert.True(t, outcome.PersistFailed)
	assert.Equal(t, StatusSubmitted, s.Status())

	// The exam is scored; only the write may be retried, never the
	// whole attempt.
	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestAbandonPersistsNothing(t *testing.T) {
	pool := makeQuestions(model.LanguageEnglish, 4)
	source := &stubSource{pools: map[string][]model.Question{model.LanguageEnglish: pool}}
	sink := &stubSink{}
	clock := newManualClock()
	m := testManager(source, sink, clock, Config{TotalQuestions: 4, Duration: time.Hour})

	userID := uuid.New()
	s, err := m.CreateSession(context.Background(), userID, model.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	m.Abandon(userID)

	_, open := <-s.Events()
	assert.False(t, open)
	assert.Empty(t, sink.saved())

	_, found := m.Session(userID)
	assert.False(t, found)
}

func TestScoreBoundsAlwaysHold(t *testing.T) {
	for correct := 0; correct <= 25; correct++ {
		for total := correct; total <= 25; total++ {
			score := Score(correct, total)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}
