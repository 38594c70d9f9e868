package exam

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/saralgov/licence-backend/internal/model"
)

// Status is the lifecycle state of a session. Transitions are strictly
// not_started → in_progress → submitted; submitted is terminal and is
// entered exactly once.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
)

// Trigger identifies which event fired the submission.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerTimer     Trigger = "timer"
	TriggerIntegrity Trigger = "integrity"
)

// Session errors.
var (
	ErrNoQuestions      = errors.New("no questions available")
	ErrAlreadyStarted   = errors.New("session already started")
	ErrNotStarted       = errors.New("session not started")
	ErrAlreadySubmitted = errors.New("session already submitted")
	ErrSessionActive    = errors.New("another session is already in progress")
	ErrUnknownQuestion  = errors.New("question is not part of this session")
	ErrOptionOutOfRange = errors.New("option index out of range")
)

// EventType enumerates the events a session pushes to its consumer.
type EventType string

const (
	EventTick             EventType = "tick"
	EventIntegrityWarning EventType = "integrity_warning"
	EventSubmitted        EventType = "submitted"
)

// Event is a server-pushed session update. Outcome is set only for
// EventSubmitted.
type Event struct {
	Type      EventType `json:"type"`
	Remaining int       `json:"remaining,omitempty"`
	Warnings  int       `json:"warnings,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`
}

// Outcome is the graded result of a submitted session. PersistFailed
// reports that the result write could not be completed even through the
// retry queue; the session is still locally submitted and must not be
// re-taken.
type Outcome struct {
	Trigger       Trigger `json:"trigger"`
	Correct       int     `json:"correct"`
	Total         int     `json:"total"`
	Score         int     `json:"score"`
	Passed        bool    `json:"passed"`
	PersistFailed bool    `json:"persist_failed,omitempty"`
}

// Snapshot is the session state returned on reconnect.
type Snapshot struct {
	ID           uuid.UUID                  `json:"id"`
	Status       Status                     `json:"status"`
	Questions    []model.QuestionForCitizen `json:"questions"`
	Answers      map[string]int             `json:"answers"`
	CurrentIndex int                        `json:"current_index"`
	Remaining    int                        `json:"remaining"`
	Warnings     int                        `json:"warnings"`
}

// Session drives one exam attempt from question load through scored
// submission. All mutations — answer selection, navigation, ticks,
// integrity events, submission — are serialized through one mutex, so
// the countdown goroutine and request handlers never race. The
// submitted status is the exactly-once guard shared by every
// submission trigger: whichever fires first wins, the rest are
// rejected.
type Session struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Language string

	cfg     Config
	clock   Clock
	sink    ResultSink
	log     zerolog.Logger
	onClose func(*Session)

	mu        sync.Mutex
	questions []model.Question
	byID      map[uuid.UUID]int
	answers   map[uuid.UUID]int
	current   int
	remaining int
	warnings  int
	status    Status
	outcome   *Outcome
	ticker    Ticker
	stopTick  chan struct{}
	closed    bool
	events    chan Event
}

func newSession(userID uuid.UUID, language string, questions []model.Question, cfg Config, clock Clock, sink ResultSink, log zerolog.Logger) *Session {
	byID := make(map[uuid.UUID]int, len(questions))
	for i, q := range questions {
		byID[q.ID] = i
	}
	id := uuid.New()
	return &Session{
		ID:        id,
		UserID:    userID,
		Language:  language,
		cfg:       cfg,
		clock:     clock,
		sink:      sink,
		log:       log.With().Str("session_id", id.String()).Str("user_id", userID.String()).Logger(),
		questions: questions,
		byID:      byID,
		answers:   make(map[uuid.UUID]int, len(questions)),
		status:    StatusNotStarted,
		events:    make(chan Event, 256),
	}
}

// Events is the stream of server-pushed updates. The channel is closed
// when the session ends (submission or Close).
func (s *Session) Events() <-chan Event { return s.events }

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Start transitions the session to in_progress and begins the
// one-second countdown. The countdown goroutine is the session's sole
// time-driven process; it terminates itself on submission.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusNotStarted {
		return ErrAlreadyStarted
	}
	if len(s.questions) == 0 {
		return ErrNoQuestions
	}

	s.status = StatusInProgress
	s.remaining = int(s.cfg.Duration / time.Second)
	s.ticker = s.clock.NewTicker(time.Second)
	s.stopTick = make(chan struct{})

	go s.run(s.ticker, s.stopTick)

	s.log.Info().Int("questions", len(s.questions)).Int("duration_s", s.remaining).Msg("Exam started")
	return nil
}

func (s *Session) run(t Ticker, stop chan struct{}) {
	for {
		select {
		case <-t.C():
			if !s.tick() {
				return
			}
		case <-stop:
			return
		}
	}
}

// tick decrements the countdown by one second. Returns false once the
// session is no longer in progress so the countdown goroutine exits.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return false
	}

	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.submitLocked(TriggerTimer)
		return false
	}

	s.emit(Event{Type: EventTick, Remaining: s.remaining})
	return true
}

// SelectAnswer records (or overwrites) the selected option for a
// question. Allowed at any point before submission, in any order.
func (s *Session) SelectAnswer(questionID uuid.UUID, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitted {
		return ErrAlreadySubmitted
	}
	idx, ok := s.byID[questionID]
	if !ok {
		return ErrUnknownQuestion
	}
	if option < 0 || option >= len(s.questions[idx].Options) {
		return ErrOptionOutOfRange
	}

	s.answers[questionID] = option
	return nil
}

// GoTo moves the current-question pointer, clamping out-of-range
// requests instead of rejecting them. Returns the resulting index.
func (s *Session) GoTo(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goToLocked(index)
}

// Next advances to the following question, clamped at the last.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goToLocked(s.current + 1)
}

// Previous moves back one question, clamped at the first.
func (s *Session) Previous() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goToLocked(s.current - 1)
}

func (s *Session) goToLocked(index int) int {
	if index < 0 {
		index = 0
	}
	if max := len(s.questions) - 1; index > max {
		index = max
	}
	if s.status != StatusSubmitted {
		s.current = index
	}
	return s.current
}

// FocusLost records one attention-loss event. The first
// MaxIntegrityWarnings occurrences produce a warning; the occurrence
// after that forces submission. The counter never resets within a
// session.
func (s *Session) FocusLost() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return
	}

	s.warnings++
	if s.warnings > s.cfg.MaxIntegrityWarnings {
		s.log.Warn().Int("warnings", s.warnings).Msg("Integrity threshold exceeded, forcing submission")
		s.submitLocked(TriggerIntegrity)
		return
	}

	s.emit(Event{Type: EventIntegrityWarning, Warnings: s.warnings, Remaining: s.remaining})
}

// WarningLimit is the number of tolerated focus-loss events; the next
// one auto-submits.
func (s *Session) WarningLimit() int {
	return s.cfg.MaxIntegrityWarnings
}

// Warnings returns the integrity warning count so far.
func (s *Session) Warnings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warnings
}

// Submit is the user-initiated submission path. Confirmation happens
// client-side; this call is the confirmed action.
func (s *Session) Submit() (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusNotStarted:
		return nil, ErrNotStarted
	case StatusSubmitted:
		return nil, ErrAlreadySubmitted
	}

	s.submitLocked(TriggerManual)
	return s.outcome, nil
}

// submitLocked is the shared submission routine behind the manual,
// timer and integrity triggers. Caller holds s.mu. The status check
// here is the single exactly-once guard: it is checked and set under
// the same lock acquisition, so racing triggers cannot both score.
func (s *Session) submitLocked(trigger Trigger) {
	if s.status == StatusSubmitted {
		return
	}
	s.status = StatusSubmitted
	s.stopCountdownLocked()

	correct := CountCorrect(s.questions, s.answers)
	total := len(s.questions)
	score := Score(correct, total)

	outcome := &Outcome{
		Trigger: trigger,
		Correct: correct,
		Total:   total,
		Score:   score,
		Passed:  score >= s.cfg.PassingScore,
	}

	status := model.ResultStatusFailed
	if outcome.Passed {
		status = model.ResultStatusPassed
	}
	result := &model.ExamResult{
		ID:          uuid.New(),
		UserID:      s.UserID,
		Status:      status,
		Score:       score,
		Categories:  []string{},
		CompletedAt: s.clock.Now(),
	}

	// The sink must complete (or surface an error) before the session
	// is considered closed, so the write happens here rather than in a
	// detached goroutine. Submission triggers carry no caller context.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.sink.Save(ctx, result); err != nil {
		s.log.Error().Err(err).Msg("Result persistence failed")
		outcome.PersistFailed = true
	}

	s.outcome = outcome
	s.log.Info().
		Str("trigger", string(trigger)).
		Int("score", score).
		Bool("passed", outcome.Passed).
		Msg("Exam submitted")

	s.emit(Event{Type: EventSubmitted, Warnings: s.warnings, Outcome: outcome})
	s.closeLocked()
}

// Outcome returns the graded result, or nil before submission.
func (s *Session) Outcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// State returns a snapshot for reconnecting clients.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	qs := make([]model.QuestionForCitizen, len(s.questions))
	for i, q := range s.questions {
		qs[i] = q.Sanitize()
	}
	answers := make(map[string]int, len(s.answers))
	for id, opt := range s.answers {
		answers[id.String()] = opt
	}

	return Snapshot{
		ID:           s.ID,
		Status:       s.status,
		Questions:    qs,
		Answers:      answers,
		CurrentIndex: s.current,
		Remaining:    s.remaining,
		Warnings:     s.warnings,
	}
}

// Close abandons the session: the countdown stops, the event stream
// ends and nothing is persisted. A no-op after submission.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCountdownLocked()
	s.closeLocked()
}

func (s *Session) stopCountdownLocked() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
	if s.onClose != nil {
		s.onClose(s)
	}
}

// emit pushes an event without blocking. Callers hold s.mu; a slow
// consumer loses ticks rather than stalling the state machine, and can
// resynchronize from State.
func (s *Session) emit(e Event) {
	if s.closed {
		return
	}
	select {
	case s.events <- e:
	default:
	}
}
