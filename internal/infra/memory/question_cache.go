package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"
)

const bankKey = "bank"

// QuestionCache caches the question bank with TTL to avoid repeated store reads.
type QuestionCache struct {
	store app.QuestionStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu        sync.RWMutex
	rnd       *rand.Rand
	cached    []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(store app.QuestionStore, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		store: store,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.fresh(); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(bankKey, func() (interface{}, error) {
		if questions, ok := c.fresh(); ok {
			return questions, nil
		}

		questions, err := c.store.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}
		// an empty bank is about to be seeded; caching it would hide the seed
		if len(questions) > 0 {
			c.mu.Lock()
			c.cached = questions
			c.expiresAt = c.clock().Add(c.ttlWithJitterLocked())
			c.mu.Unlock()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (c *QuestionCache) InsertQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	defer c.Invalidate()
	return c.store.InsertQuestion(ctx, q)
}

// SeedIfEmpty delegates to the store's atomic guard when it has one.
func (c *QuestionCache) SeedIfEmpty(ctx context.Context, questions []domain.Question) (int, error) {
	defer c.Invalidate()
	if seeder, ok := c.store.(app.AtomicSeeder); ok {
		return seeder.SeedIfEmpty(ctx, questions)
	}
	return app.SeedSequentially(ctx, c.store, questions)
}

// Invalidate drops the cached bank.
func (c *QuestionCache) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *QuestionCache) fresh() ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached != nil && c.expiresAt.After(c.clock()) {
		return cloneQuestions(c.cached), true
	}
	return nil, false
}

func (c *QuestionCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	copy(out, in)
	return out
}
