package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"vocab-quiz-service/internal/domain"
)

const maxStatsRetries = 10

// ResultRecord is one entry of users:{id}:results.
type ResultRecord struct {
	ID             string              `json:"id"`
	UserID         string              `json:"userId"`
	Score          int                 `json:"score"`
	TotalQuestions int                 `json:"totalQuestions"`
	Answers        []domain.QuizAnswer `json:"answers"`
	CompletedAt    time.Time           `json:"completedAt"`
}

// UserStore keeps result history as a Redis list and stats as one JSON value per user.
// Stats updates use WATCH so concurrent completions for one user never lose an update.
type UserStore struct {
	client *redis.Client
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

func (s *UserStore) AppendResult(ctx context.Context, userID string, result domain.QuizResult) (string, error) {
	record := ResultRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Answers:        result.Answers,
		CompletedAt:    result.CompletedAt,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	if err := s.client.RPush(ctx, resultsKey(userID), payload).Err(); err != nil {
		return "", wrap("append result", err)
	}
	return record.ID, nil
}

// Results returns the user's logged results, oldest first.
func (s *UserStore) Results(ctx context.Context, userID string) ([]ResultRecord, error) {
	raw, err := s.client.LRange(ctx, resultsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, wrap("list results", err)
	}
	records := make([]ResultRecord, 0, len(raw))
	for _, item := range raw {
		var record ResultRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *UserStore) GetStats(ctx context.Context, userID string) (domain.UserStats, bool, error) {
	return readStats(ctx, s.client, statsKey(userID))
}

func (s *UserStore) UpdateStats(ctx context.Context, userID string, fn func(domain.UserStats, bool) domain.UserStats) (domain.UserStats, error) {
	key := statsKey(userID)
	var updated domain.UserStats

	txf := func(tx *redis.Tx) error {
		current, exists, err := readStats(ctx, tx, key)
		if err != nil {
			return err
		}
		next := fn(current, exists)
		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err == nil {
			updated = next
		}
		return err
	}

	for i := 0; i < maxStatsRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.UserStats{}, wrap("update stats", err)
	}
	return domain.UserStats{}, domain.ErrStatsContention
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readStats(ctx context.Context, client stringGetter, key string) (domain.UserStats, bool, error) {
	payload, err := client.Get(ctx, key).Bytes()
	if isMiss(err) {
		return domain.UserStats{}, false, nil
	}
	if err != nil {
		return domain.UserStats{}, false, wrap("get stats", err)
	}
	var stats domain.UserStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return domain.UserStats{}, false, err
	}
	return stats, true, nil
}

func statsKey(userID string) string {
	return "userStats:" + userID
}

func resultsKey(userID string) string {
	return "users:" + userID + ":results"
}
