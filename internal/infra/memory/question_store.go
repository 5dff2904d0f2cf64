package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"vocab-quiz-service/internal/domain"
)

// QuestionStore is an in-memory question collection.
type QuestionStore struct {
	mu        sync.RWMutex
	questions []domain.Question
	newID     func() string
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{newID: uuid.NewString}
}

func (s *QuestionStore) ListQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out, nil
}

func (s *QuestionStore) InsertQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(q), nil
}

// SeedIfEmpty checks and writes under one lock, so concurrent seeders never duplicate the bank.
func (s *QuestionStore) SeedIfEmpty(_ context.Context, questions []domain.Question) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) > 0 {
		return 0, nil
	}
	for _, q := range questions {
		s.insertLocked(q)
	}
	return len(questions), nil
}

func (s *QuestionStore) insertLocked(q domain.Question) domain.Question {
	q.ID = s.newID()
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	q.Options = opts
	s.questions = append(s.questions, q)
	return q
}
