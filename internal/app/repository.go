package app

import (
	"context"

	"vocab-quiz-service/internal/domain"
)

// QuestionStore is the question collection of the document store.
type QuestionStore interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	// InsertQuestion stores q and returns it with its store-assigned ID.
	InsertQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
}

// AtomicSeeder is implemented by stores that can guard "create if absent" in one step.
type AtomicSeeder interface {
	// SeedIfEmpty writes questions only if the collection is empty and returns how many were written.
	SeedIfEmpty(ctx context.Context, questions []domain.Question) (int, error)
}

// ResultLog is the append-only per-user result history.
type ResultLog interface {
	AppendResult(ctx context.Context, userID string, result domain.QuizResult) (string, error)
}

// StatsStore owns the per-user running totals.
type StatsStore interface {
	// GetStats returns false when the user has no stats record yet.
	GetStats(ctx context.Context, userID string) (domain.UserStats, bool, error)
	// UpdateStats applies fn to the current record under the store's concurrency guard and saves the outcome.
	UpdateStats(ctx context.Context, userID string, fn func(current domain.UserStats, exists bool) domain.UserStats) (domain.UserStats, error)
}

// SessionRepository abstracts how live quiz sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// Observer receives quiz lifecycle signals (metrics).
type Observer interface {
	SessionOpened()
	SessionClosed()
	QuizCompleted(score int)
	QuestionTimedOut()
	StatsSaveFailed()
}

type nopObserver struct{}

func (nopObserver) SessionOpened()    {}
func (nopObserver) SessionClosed()    {}
func (nopObserver) QuizCompleted(int) {}
func (nopObserver) QuestionTimedOut() {}
func (nopObserver) StatsSaveFailed()  {}
