package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/domain"
)

// StatsService appends quiz results and maintains each user's running totals.
type StatsService struct {
	results ResultLog
	stats   StatsStore
	now     func() time.Time
	log     logrus.FieldLogger
}

func NewStatsService(results ResultLog, stats StatsStore, log logrus.FieldLogger) *StatsService {
	return NewStatsServiceWithClock(results, stats, log, time.Now)
}

// NewStatsServiceWithClock is used by tests for deterministic timestamps.
func NewStatsServiceWithClock(results ResultLog, stats StatsStore, log logrus.FieldLogger, now func() time.Time) *StatsService {
	return &StatsService{
		results: results,
		stats:   stats,
		now:     now,
		log:     log.WithField("component", "stats"),
	}
}

// RecordResult logs the result and folds its score into the user's stats.
func (s *StatsService) RecordResult(ctx context.Context, userID string, result domain.QuizResult) (domain.UserStats, error) {
	if userID == "" {
		return domain.UserStats{}, domain.ErrUnauthenticated
	}

	now := s.now()
	result.CompletedAt = now
	resultID, err := s.results.AppendResult(ctx, userID, result)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("append result: %w", err)
	}

	updated, err := s.stats.UpdateStats(ctx, userID, func(current domain.UserStats, exists bool) domain.UserStats {
		return domain.NextStats(current, exists, userID, result.Score, now)
	})
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("update stats: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"result_id": resultID,
		"score":     result.Score,
		"total":     updated.TotalQuizzes,
	}).Debug("quiz result recorded")
	return updated, nil
}

// ReadStats returns the user's stats; false means no history yet.
func (s *StatsService) ReadStats(ctx context.Context, userID string) (domain.UserStats, bool, error) {
	if userID == "" {
		return domain.UserStats{}, false, domain.ErrUnauthenticated
	}
	stats, ok, err := s.stats.GetStats(ctx, userID)
	if err != nil {
		return domain.UserStats{}, false, fmt.Errorf("read stats: %w", err)
	}
	return stats, ok, nil
}
