package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"vocab-quiz-service/internal/domain"
)

// seedLockKey guards the question bank seed across instances.
const seedLockKey int64 = 0x766f636162

// Store is the Postgres document store for questions, results and user stats.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

func (s *Store) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, question, options, correct_answer, explanation
		FROM questions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0, 20)
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.Question, &raw, &q.CorrectAnswer, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) InsertQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	return insertQuestion(ctx, s.pool, q, s.now())
}

// SeedIfEmpty writes questions inside one transaction holding an advisory lock, so only
// the first of several concurrent seeders inserts anything.
func (s *Store) SeedIfEmpty(ctx context.Context, questions []domain.Question) (int, error) {
	written := 0
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
			return err
		}
		var count int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		now := s.now()
		for _, q := range questions {
			if _, err := insertQuestion(ctx, tx, q, now); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	return written, nil
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func insertQuestion(ctx context.Context, db rowQuerier, q domain.Question, at time.Time) (domain.Question, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return domain.Question{}, err
	}
	stored := q
	stored.ID = uuid.NewString()
	err = db.QueryRow(ctx, `INSERT INTO questions (id, question, options, correct_answer, explanation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		stored.ID, q.Question, options, q.CorrectAnswer, q.Explanation, at).Scan(&stored.ID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return stored, nil
}

func (s *Store) AppendResult(ctx context.Context, userID string, result domain.QuizResult) (string, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.pool.Exec(ctx, `INSERT INTO quiz_results (id, user_id, score, total_questions, answers, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, userID, result.Score, result.TotalQuestions, answers, result.CompletedAt)
	if err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}
	return id, nil
}

// Results returns the user's logged results, oldest first.
func (s *Store) Results(ctx context.Context, userID string) ([]domain.QuizResult, error) {
	rows, err := s.pool.Query(ctx, `SELECT score, total_questions, answers, completed_at
		FROM quiz_results WHERE user_id=$1 ORDER BY completed_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []domain.QuizResult
	for rows.Next() {
		var (
			r   domain.QuizResult
			raw []byte
		)
		if err := rows.Scan(&r.Score, &r.TotalQuestions, &raw, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(raw, &r.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Store) GetStats(ctx context.Context, userID string) (domain.UserStats, bool, error) {
	stats, err := scanStats(s.pool.QueryRow(ctx, `SELECT total_quizzes, average_score, best_score, last_quiz_date
		FROM user_stats WHERE user_id=$1`, userID), userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserStats{}, false, nil
	}
	if err != nil {
		return domain.UserStats{}, false, fmt.Errorf("get stats: %w", err)
	}
	return stats, stats.TotalQuizzes > 0, nil
}

// UpdateStats locks the user's row for the duration of fn so concurrent completions serialise.
func (s *Store) UpdateStats(ctx context.Context, userID string, fn func(domain.UserStats, bool) domain.UserStats) (domain.UserStats, error) {
	var updated domain.UserStats
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
			return err
		}
		current, err := scanStats(tx.QueryRow(ctx, `SELECT total_quizzes, average_score, best_score, last_quiz_date
			FROM user_stats WHERE user_id=$1 FOR UPDATE`, userID), userID)
		if err != nil {
			return err
		}
		next := fn(current, current.TotalQuizzes > 0)
		next.UserID = userID
		_, err = tx.Exec(ctx, `UPDATE user_stats
			SET total_quizzes=$2, average_score=$3, best_score=$4, last_quiz_date=$5
			WHERE user_id=$1`,
			userID, next.TotalQuizzes, next.AverageScore, next.BestScore, next.LastQuizDate)
		if err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("update stats: %w", err)
	}
	return updated, nil
}

func scanStats(row pgx.Row, userID string) (domain.UserStats, error) {
	stats := domain.UserStats{UserID: userID}
	if err := row.Scan(&stats.TotalQuizzes, &stats.AverageScore, &stats.BestScore, &stats.LastQuizDate); err != nil {
		return domain.UserStats{}, err
	}
	return stats, nil
}
