package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"
	"vocab-quiz-service/internal/infra/postgres"
	pgmigrations "vocab-quiz-service/internal/infra/postgres/migrations"
	infraredis "vocab-quiz-service/internal/infra/redis"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	store := postgres.NewStore(pool)
	questions := infraredis.NewQuestionCache(redisClient, store, 5*time.Minute)
	bank := app.NewQuestionBank(questions, log)
	stats := app.NewStatsService(store, store, log)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(sessions, bank, stats, log, app.QuizConfig{QuestionCount: 5})

	// concurrent first visits must still seed exactly once
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := bank.EnsureSeeded(ctx); err != nil {
				t.Errorf("seed: %v", err)
			}
		}()
	}
	wg.Wait()
	all, err := store.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(all))
	}
	key := make(map[string]int, len(all))
	for _, q := range all {
		key[q.ID] = q.CorrectAnswer
	}

	play := func(correct int) domain.QuizResult {
		t.Helper()
		session, err := service.Start(ctx, "u1")
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		defer service.Leave(ctx, session.ID(), "u1")
		for i := 0; i < 5; i++ {
			q := session.Snapshot().Question
			option := key[q.ID]
			if i >= correct {
				option = (option + 1) % domain.OptionCount
			}
			if _, err := session.Select(option); err != nil {
				t.Fatalf("select: %v", err)
			}
			if _, err := session.Next(); err != nil {
				t.Fatalf("next: %v", err)
			}
		}
		result, ok := session.Result()
		if !ok {
			t.Fatalf("expected completed session")
		}
		return result
	}

	if got := play(5).Score; got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := play(3).Score; got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}

	userStats, ok, err := stats.ReadStats(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("read stats: ok=%v err=%v", ok, err)
	}
	if userStats.TotalQuizzes != 2 || userStats.AverageScore != 80 || userStats.BestScore != 100 {
		t.Fatalf("unexpected stats %+v", userStats)
	}
	results, err := store.Results(ctx, "u1")
	if err != nil || len(results) != 2 {
		t.Fatalf("expected 2 logged results, got %d (%v)", len(results), err)
	}
}

func TestConcurrentStatsUpdates(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpdateStats(ctx, "u1", func(current domain.UserStats, exists bool) domain.UserStats {
				return domain.NextStats(current, exists, "u1", 50, time.Now())
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	stats, ok, err := store.GetStats(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("get stats: ok=%v err=%v", ok, err)
	}
	if stats.TotalQuizzes != 8 || stats.AverageScore != 50 {
		t.Fatalf("lost update: %+v", stats)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
