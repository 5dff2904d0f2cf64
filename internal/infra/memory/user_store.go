package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"vocab-quiz-service/internal/domain"
)

type storedResult struct {
	ID     string
	Result domain.QuizResult
}

// UserStore keeps result history and stats in memory. It implements app.ResultLog and app.StatsStore.
type UserStore struct {
	mu      sync.Mutex
	results map[string][]storedResult
	stats   map[string]domain.UserStats
}

func NewUserStore() *UserStore {
	return &UserStore{
		results: make(map[string][]storedResult),
		stats:   make(map[string]domain.UserStats),
	}
}

func (s *UserStore) AppendResult(_ context.Context, userID string, result domain.QuizResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.results[userID] = append(s.results[userID], storedResult{ID: id, Result: result})
	return id, nil
}

// Results returns the logged results for userID, oldest first.
func (s *UserStore) Results(userID string) []domain.QuizResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.QuizResult, 0, len(s.results[userID]))
	for _, r := range s.results[userID] {
		out = append(out, r.Result)
	}
	return out
}

func (s *UserStore) GetStats(_ context.Context, userID string) (domain.UserStats, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[userID]
	return stats, ok, nil
}

func (s *UserStore) UpdateStats(_ context.Context, userID string, fn func(domain.UserStats, bool) domain.UserStats) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.stats[userID]
	next := fn(current, ok)
	s.stats[userID] = next
	return next, nil
}
