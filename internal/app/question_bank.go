package app

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/domain"
)

// QuestionBank seeds and samples the vocabulary question collection.
type QuestionBank struct {
	store   QuestionStore
	seed    func() []domain.Question
	shuffle func(n int, swap func(i, j int))
	log     logrus.FieldLogger
}

func NewQuestionBank(store QuestionStore, log logrus.FieldLogger) *QuestionBank {
	return &QuestionBank{
		store:   store,
		seed:    domain.VocabularyBank,
		shuffle: rand.Shuffle,
		log:     log.WithField("component", "question_bank"),
	}
}

// EnsureSeeded writes the canonical bank if and only if the collection is empty.
func (b *QuestionBank) EnsureSeeded(ctx context.Context) (int, error) {
	var (
		written int
		err     error
	)
	if seeder, ok := b.store.(AtomicSeeder); ok {
		written, err = seeder.SeedIfEmpty(ctx, b.seed())
	} else {
		written, err = SeedSequentially(ctx, b.store, b.seed())
	}
	if err != nil {
		return written, fmt.Errorf("seed question bank: %w", err)
	}
	if written > 0 {
		b.log.WithField("questions", written).Info("question bank seeded")
	}
	return written, nil
}

// SeedSequentially is the check-then-insert fallback for stores without an atomic guard.
// Concurrent callers can race between the emptiness check and the inserts.
func SeedSequentially(ctx context.Context, store QuestionStore, questions []domain.Question) (int, error) {
	existing, err := store.ListQuestions(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	written := 0
	for _, q := range questions {
		if _, err := store.InsertQuestion(ctx, q); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Sample returns n questions picked uniformly at random. n beyond the bank size returns the
// whole shuffled bank.
func (b *QuestionBank) Sample(ctx context.Context, n int) ([]domain.Question, error) {
	all, err := b.store.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if n <= 0 {
		return []domain.Question{}, nil
	}

	shuffled := make([]domain.Question, len(all))
	copy(shuffled, all)
	b.shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n], nil
}
