package app

import (
	"fmt"
	"sync"
	"time"

	"vocab-quiz-service/internal/domain"
)

// State is the quiz attempt's position in Loading -> InProgress -> Completed.
type State int

const (
	StateLoading State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

const (
	defaultTimeLimit = 30
	defaultTick      = time.Second
)

// SessionConfig tunes the per-question countdown.
type SessionConfig struct {
	TimeLimit int           // ticks per question
	Tick      time.Duration // length of one tick
	Clock     Clock
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.TimeLimit <= 0 {
		c.TimeLimit = defaultTimeLimit
	}
	if c.Tick <= 0 {
		c.Tick = defaultTick
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	return c
}

type sessionHooks struct {
	completed func(*Session, domain.QuizResult)
	timedOut  func(*Session)
}

// Session drives one quiz attempt for one user.
//
// Answer clicks and timer ticks arrive on different goroutines; mu serialises them.
// Every armed tick carries the turn it was armed for, and any transition away from an
// unanswered question bumps the turn, so a tick that lost the race is a no-op.
type Session struct {
	id     string
	userID string
	cfg    SessionConfig
	hooks  sessionHooks

	mu          sync.Mutex
	state       State
	closed      bool
	questions   []domain.Question
	answers     []int
	index       int
	feedback    bool
	timeLeft    int
	timer       Timer
	turn        uint64
	result      *domain.QuizResult
	loadErr     string
	subscribers map[chan domain.SessionSnapshot]struct{}
}

// NewSession is exported for infrastructure layers and tests.
func NewSession(id, userID string, cfg SessionConfig) *Session {
	return &Session{
		id:          id,
		userID:      userID,
		cfg:         cfg.withDefaults(),
		state:       StateLoading,
		subscribers: make(map[chan domain.SessionSnapshot]struct{}),
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

// Snapshot returns the current render state.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result returns the completed result, if any.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

// begin moves a loading session onto its first question.
func (s *Session) begin(questions []domain.Question) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.state != StateLoading {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("session %s is %s, not loading", s.id, state)
	}

	s.questions = questions
	s.answers = make([]int, len(questions))
	for i := range s.answers {
		s.answers[i] = domain.Unanswered
	}
	s.index = 0
	s.feedback = false
	s.loadErr = ""

	var completed *domain.QuizResult
	if len(questions) == 0 {
		completed = s.completeLocked()
	} else {
		s.state = StateInProgress
		s.armLocked()
	}
	s.broadcastLocked()
	s.mu.Unlock()

	s.finish(completed)
	return nil
}

// failLoad keeps the session in Loading and surfaces a retryable message.
func (s *Session) failLoad(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateLoading {
		return
	}
	s.loadErr = message
	s.broadcastLocked()
}

// Select records the option for the current question. Accepted once per question.
func (s *Session) Select(option int) (domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.activeLocked(); err != nil {
		return domain.SessionSnapshot{}, err
	}
	if s.feedback {
		return domain.SessionSnapshot{}, domain.ErrAnswerLocked
	}
	q := s.questions[s.index]
	if option < 0 || option >= len(q.Options) {
		return domain.SessionSnapshot{}, domain.ErrOptionOutOfRange
	}

	s.answers[s.index] = option
	s.feedback = true
	s.stopTimerLocked()
	return s.broadcastLocked(), nil
}

// Next advances past an answered question, completing the quiz after the last one.
func (s *Session) Next() (domain.SessionSnapshot, error) {
	s.mu.Lock()
	if err := s.activeLocked(); err != nil {
		s.mu.Unlock()
		return domain.SessionSnapshot{}, err
	}
	if !s.feedback {
		s.mu.Unlock()
		return domain.SessionSnapshot{}, domain.ErrNotAnswered
	}
	completed := s.advanceLocked()
	snap := s.broadcastLocked()
	s.mu.Unlock()

	s.finish(completed)
	return snap, nil
}

// reset returns a completed (or failed-to-load) session to Loading for a retake.
func (s *Session) reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.state == StateInProgress {
		return domain.ErrRetakeNotAllowed
	}
	s.stopTimerLocked()
	s.state = StateLoading
	s.questions = nil
	s.answers = nil
	s.index = 0
	s.feedback = false
	s.timeLeft = 0
	s.result = nil
	s.loadErr = ""
	s.broadcastLocked()
	return nil
}

// Close cancels the pending timer and releases subscribers. Safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) activeLocked() error {
	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.state != StateInProgress {
		return domain.ErrNotInProgress
	}
	return nil
}

func (s *Session) advanceLocked() *domain.QuizResult {
	s.stopTimerLocked()
	if s.index < len(s.questions)-1 {
		s.index++
		s.feedback = false
		s.armLocked()
		return nil
	}
	return s.completeLocked()
}

func (s *Session) completeLocked() *domain.QuizResult {
	s.stopTimerLocked()
	s.state = StateCompleted
	s.feedback = false
	s.timeLeft = 0
	result := domain.BuildResult(s.questions, s.answers, s.cfg.Clock.Now())
	s.result = &result
	out := result
	return &out
}

func (s *Session) finish(result *domain.QuizResult) {
	if result != nil && s.hooks.completed != nil {
		s.hooks.completed(s, *result)
	}
}

// armLocked starts the countdown for the current question.
func (s *Session) armLocked() {
	s.stopTimerLocked()
	s.timeLeft = s.cfg.TimeLimit
	turn := s.turn
	s.timer = s.cfg.Clock.AfterFunc(s.cfg.Tick, func() { s.onTick(turn) })
}

// stopTimerLocked cancels the pending tick and invalidates any tick already in flight.
func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.turn++
}

func (s *Session) onTick(turn uint64) {
	s.mu.Lock()
	if s.closed || turn != s.turn || s.state != StateInProgress || s.feedback {
		s.mu.Unlock()
		return
	}

	s.timeLeft--
	var completed *domain.QuizResult
	timedOut := s.timeLeft <= 0
	if timedOut {
		s.answers[s.index] = domain.Unanswered
		completed = s.advanceLocked()
	} else {
		s.timer = s.cfg.Clock.AfterFunc(s.cfg.Tick, func() { s.onTick(turn) })
	}
	s.broadcastLocked()
	s.mu.Unlock()

	if timedOut && s.hooks.timedOut != nil {
		s.hooks.timedOut(s)
	}
	s.finish(completed)
}

func (s *Session) subscribe() (<-chan domain.SessionSnapshot, func()) {
	ch := make(chan domain.SessionSnapshot, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	// ch is empty here, so the send cannot block and precedes any later broadcast
	ch <- s.snapshotLocked()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.SessionSnapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// slow reader: drop its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		SessionID:      s.id,
		State:          s.state.String(),
		QuestionIndex:  s.index,
		TotalQuestions: len(s.questions),
		TimeLeft:       s.timeLeft,
		Error:          s.loadErr,
	}

	switch s.state {
	case StateInProgress:
		q := s.questions[s.index]
		view := domain.ViewOf(q)
		snap.Question = &view
		if s.feedback {
			fb := domain.FeedbackFor(q, s.answers[s.index])
			snap.Feedback = &fb
		}
	case StateCompleted:
		if s.result != nil {
			result := *s.result
			snap.Result = &result
		}
		snap.Review = make([]domain.ReviewItem, 0, len(s.questions))
		for i, q := range s.questions {
			snap.Review = append(snap.Review, domain.ReviewItem{
				Question:      domain.ViewOf(q),
				CorrectAnswer: q.CorrectAnswer,
				UserAnswer:    s.answers[i],
				Correct:       q.IsCorrect(s.answers[i]),
				Explanation:   q.Explanation,
			})
		}
	}
	return snap
}
