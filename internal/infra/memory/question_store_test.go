package memory

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"
)

func TestSeedIfEmptyIsIdempotentUnderConcurrency(t *testing.T) {
	store := NewQuestionStore()
	bank := app.NewQuestionBank(store, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := bank.EnsureSeeded(context.Background()); err != nil {
				t.Errorf("seed: %v", err)
			}
		}()
	}
	wg.Wait()

	questions, _ := store.ListQuestions(context.Background())
	if len(questions) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(questions))
	}
	seen := make(map[string]bool)
	for _, q := range questions {
		if q.ID == "" || seen[q.ID] {
			t.Fatalf("expected unique store-assigned ids, got %q", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestInsertQuestionCopiesOptions(t *testing.T) {
	store := NewQuestionStore()
	q := domain.Question{Question: "x", Options: []string{"a", "b", "c", "d"}}
	stored, err := store.InsertQuestion(context.Background(), q)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	q.Options[0] = "mutated"

	questions, _ := store.ListQuestions(context.Background())
	if questions[0].Options[0] != "a" || stored.ID == "" {
		t.Fatalf("expected stored copy, got %+v", questions[0])
	}
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
