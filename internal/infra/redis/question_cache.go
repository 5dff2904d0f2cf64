package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"
)

const bankKey = "questions:bank"

// QuestionCache caches the whole question bank as one JSON value and falls back to the
// backing store on a miss. Concurrent misses share one load.
type QuestionCache struct {
	client *redis.Client
	store  app.QuestionStore
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, store app.QuestionStore, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		store:  store,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.cached(ctx); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(bankKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.cached(ctx); ok {
			return questions, nil
		}
		questions, err := c.store.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if len(questions) > 0 {
			if payload, err := json.Marshal(questions); err == nil {
				_ = c.client.Set(ctx, bankKey, payload, c.ttlWithJitter()).Err()
			}
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) InsertQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	stored, err := c.store.InsertQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}
	c.Invalidate(ctx)
	return stored, nil
}

// SeedIfEmpty delegates to the backing store's atomic seeder when it has one.
func (c *QuestionCache) SeedIfEmpty(ctx context.Context, questions []domain.Question) (int, error) {
	var (
		written int
		err     error
	)
	if seeder, ok := c.store.(app.AtomicSeeder); ok {
		written, err = seeder.SeedIfEmpty(ctx, questions)
	} else {
		written, err = app.SeedSequentially(ctx, c.store, questions)
	}
	if written > 0 {
		c.Invalidate(ctx)
	}
	return written, err
}

// Invalidate drops the cached bank.
func (c *QuestionCache) Invalidate(ctx context.Context) {
	_ = c.client.Del(ctx, bankKey).Err()
}

func (c *QuestionCache) cached(ctx context.Context) ([]domain.Question, bool) {
	payload, err := c.client.Get(ctx, bankKey).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(payload, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// isMiss reports whether err is a plain cache miss.
func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("redis %s: %w", op, err)
}
