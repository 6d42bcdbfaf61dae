package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ledgerbot/internal/model"
	"ledgerbot/internal/repository"
)

// StatsService computes the profit/loss summary on demand. Nothing is cached.
type StatsService struct {
	logger *zap.Logger
}

func NewStatsService(logger *zap.Logger) *StatsService {
	return &StatsService{logger: logger}
}

// Summary aggregates within the turn's session.
func (s *StatsService) Summary(ctx context.Context, sess *repository.Session, userID int64) (*model.Summary, error) {
	sum, err := sess.Stats().Summary(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to compute statistics", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("statistics: %w", err)
	}
	s.logger.Debug("Statistics computed",
		zap.Int64("user_id", userID),
		zap.Int64("completed", sum.CompletedProjects),
		zap.Int64("active", sum.ActiveProjects),
		zap.String("profit", sum.Profit().String()),
	)
	return sum, nil
}
