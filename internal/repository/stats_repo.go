package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/model"
)

type StatsRepository struct {
	q      querier
	logger *zap.Logger
}

func NewStatsRepository(q querier, logger *zap.Logger) *StatsRepository {
	return &StatsRepository{q: q, logger: logger}
}

// ProjectTotals counts the user's projects and sums the cost of completed orders.
func (r *StatsRepository) ProjectTotals(ctx context.Context, userID int64) (completed, active, incomeCents int64, err error) {
	defer observe("aggregate", "projects", time.Now())

	query := `
        SELECT
            CAST(COALESCE(SUM(CASE WHEN status = $2 THEN 1 ELSE 0 END), 0) AS BIGINT),
            CAST(COALESCE(SUM(CASE WHEN status <> $2 THEN 1 ELSE 0 END), 0) AS BIGINT),
            CAST(COALESCE(SUM(CASE WHEN status = $2 AND type = $3 THEN cost_cents ELSE 0 END), 0) AS BIGINT)
        FROM projects
        WHERE user_id = $1
    `
	err = r.q.QueryRow(ctx, query, userID, string(model.StatusCompleted), string(model.ProjectTypeOrder)).
		Scan(&completed, &active, &incomeCents)
	if err != nil {
		r.logger.Error("Failed to aggregate projects", zap.Int64("user_id", userID), zap.Error(err))
		return 0, 0, 0, fmt.Errorf("aggregate projects: %w", err)
	}
	return completed, active, incomeCents, nil
}

// ExpenseTotal sums every expense of the user, zero when there are none.
func (r *StatsRepository) ExpenseTotal(ctx context.Context, userID int64) (int64, error) {
	defer observe("aggregate", "expenses", time.Now())

	var cents int64
	err := r.q.QueryRow(ctx, `SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) FROM expenses WHERE user_id = $1`, userID).
		Scan(&cents)
	if err != nil {
		r.logger.Error("Failed to aggregate expenses", zap.Int64("user_id", userID), zap.Error(err))
		return 0, fmt.Errorf("aggregate expenses: %w", err)
	}
	return cents, nil
}

// Summary builds the user's profit/loss snapshot.
func (r *StatsRepository) Summary(ctx context.Context, userID int64) (*model.Summary, error) {
	completed, active, income, err := r.ProjectTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	spent, err := r.ExpenseTotal(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Summary{
		CompletedProjects: completed,
		ActiveProjects:    active,
		Income:            fromCents(income),
		Expenses:          fromCents(spent),
	}, nil
}
