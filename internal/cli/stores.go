package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/auth"
	"vocab-quiz-service/internal/config"
	"vocab-quiz-service/internal/infra/memory"
	"vocab-quiz-service/internal/infra/postgres"
	redisstore "vocab-quiz-service/internal/infra/redis"
)

// stores is the persistence wiring chosen from config: Postgres when a URL is set, Redis
// when an address is set, in-process maps otherwise.
type stores struct {
	questions   app.QuestionStore
	results     app.ResultLog
	stats       app.StatsStore
	sessions    app.SessionRepository
	revocations auth.RevocationStore
	close       func()
}

func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*stores, error) {
	var closers []func()
	s := &stores{}
	s.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return nil, err
		}
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			s.close()
			return nil, err
		}
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var pg *postgres.Store
	var base app.QuestionStore = memory.NewQuestionStore()
	if pool != nil {
		pg = postgres.NewStore(pool)
		base = pg
	}
	if redisClient != nil {
		s.questions = redisstore.NewQuestionCache(redisClient, base, quizTTL)
	} else {
		s.questions = memory.NewQuestionCache(base, quizTTL)
	}

	switch {
	case pg != nil:
		s.results, s.stats = pg, pg
	case redisClient != nil:
		users := redisstore.NewUserStore(redisClient)
		s.results, s.stats = users, users
	default:
		users := memory.NewUserStore()
		s.results, s.stats = users, users
	}

	if redisClient != nil {
		s.sessions = redisstore.NewSessionStore(redisClient, redisTTL)
		s.revocations = redisstore.NewRevocationStore(redisClient)
	} else {
		s.sessions = memory.NewSessionStore()
		s.revocations = memory.NewRevocationStore()
	}

	log.WithFields(logrus.Fields{
		"postgres": pool != nil,
		"redis":    redisClient != nil,
	}).Info("stores ready")
	return s, nil
}
