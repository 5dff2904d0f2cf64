package app_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"
	"vocab-quiz-service/internal/infra/memory"
)

// manualClock fires scheduled callbacks only when the test says so.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) app.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

// Tick fires every pending timer once.
func (c *manualClock) Tick() {
	c.run(func(t *manualTimer) bool { return !t.stopped && !t.fired })
}

// FireStopped runs callbacks that were cancelled, as if they raced the cancellation.
func (c *manualClock) FireStopped() {
	c.run(func(t *manualTimer) bool { return t.stopped && !t.fired })
}

func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *manualClock) run(match func(*manualTimer) bool) {
	c.mu.Lock()
	var due []*manualTimer
	for _, t := range c.timers {
		if match(t) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type countingObserver struct {
	mu          sync.Mutex
	opened      int
	closed      int
	completed   []int
	timeouts    int
	saveFailure int
}

func (o *countingObserver) SessionOpened()    { o.mu.Lock(); o.opened++; o.mu.Unlock() }
func (o *countingObserver) SessionClosed()    { o.mu.Lock(); o.closed++; o.mu.Unlock() }
func (o *countingObserver) QuestionTimedOut() { o.mu.Lock(); o.timeouts++; o.mu.Unlock() }
func (o *countingObserver) StatsSaveFailed()  { o.mu.Lock(); o.saveFailure++; o.mu.Unlock() }
func (o *countingObserver) QuizCompleted(score int) {
	o.mu.Lock()
	o.completed = append(o.completed, score)
	o.mu.Unlock()
}

type fixture struct {
	service   *app.QuizService
	questions *memory.QuestionStore
	users     *memory.UserStore
	sessions  *memory.SessionStore
	clock     *manualClock
	observer  *countingObserver
}

func newFixture(t *testing.T, timeLimit int) *fixture {
	t.Helper()
	return newFixtureWithStats(t, timeLimit, nil)
}

func newFixtureWithStats(t *testing.T, timeLimit int, stats app.StatsStore) *fixture {
	t.Helper()
	f := &fixture{
		questions: memory.NewQuestionStore(),
		users:     memory.NewUserStore(),
		sessions:  memory.NewSessionStore(),
		clock:     newManualClock(),
		observer:  &countingObserver{},
	}
	if stats == nil {
		stats = f.users
	}
	log := testLogger()
	bank := app.NewQuestionBank(f.questions, log)
	statsService := app.NewStatsServiceWithClock(f.users, stats, log, f.clock.Now)
	f.service = app.NewQuizService(f.sessions, bank, statsService, log, app.QuizConfig{
		QuestionCount: 5,
		TimeLimit:     timeLimit,
		Tick:          time.Second,
		Clock:         f.clock,
	}).WithObserver(f.observer)
	return f
}

// answerKey maps question IDs to their correct option.
func (f *fixture) answerKey(t *testing.T) map[string]int {
	t.Helper()
	questions, err := f.questions.ListQuestions(context.Background())
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	key := make(map[string]int, len(questions))
	for _, q := range questions {
		key[q.ID] = q.CorrectAnswer
	}
	return key
}

// play answers every question of the session, correctly for the first `correct` ones.
func (f *fixture) play(t *testing.T, session *app.Session, correct int) domain.SessionSnapshot {
	t.Helper()
	key := f.answerKey(t)
	var snap domain.SessionSnapshot
	for i := 0; ; i++ {
		current := session.Snapshot()
		if current.Question == nil {
			t.Fatalf("expected question at step %d, got %+v", i, current)
		}
		option := key[current.Question.ID]
		if i >= correct {
			option = (option + 1) % domain.OptionCount
		}
		if _, err := session.Select(option); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		var err error
		snap, err = session.Next()
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if snap.State == app.StateCompleted.String() {
			return snap
		}
	}
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
