package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledgerbot/internal/model"
)

type ExpenseRepository struct {
	q      querier
	logger *zap.Logger
}

func NewExpenseRepository(q querier, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{q: q, logger: logger}
}

const expenseColumns = `id, user_id, amount_cents, date, comment, created_at`

func scanExpense(r row) (*model.Expense, error) {
	var (
		e     model.Expense
		cents int64
	)
	err := r.Scan(
		&e.ID,
		&e.UserID,
		&cents,
		scanTime(&e.Date),
		&e.Comment,
		scanTime(&e.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	e.Amount = fromCents(cents)
	return &e, nil
}

func (r *ExpenseRepository) Insert(ctx context.Context, e *model.Expense) (int64, error) {
	defer observe("insert", "expenses", time.Now())
	r.logger.Debug("Inserting expense", zap.Int64("user_id", e.UserID), zap.String("amount", e.Amount.String()))

	cents, err := toCents(e.Amount)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	query := `
        INSERT INTO expenses (user_id, amount_cents, date, comment, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	var id int64
	err = r.q.QueryRow(ctx, query,
		e.UserID,
		cents,
		e.Date,
		e.Comment,
		e.CreatedAt,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert expense", zap.Int64("user_id", e.UserID), zap.Error(err))
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	e.ID = id
	r.logger.Info("Expense created", zap.Int64("expense_id", id), zap.Int64("user_id", e.UserID))
	return id, nil
}

// FindByID returns ErrNotFound when no expense has the id.
func (r *ExpenseRepository) FindByID(ctx context.Context, id int64) (*model.Expense, error) {
	defer observe("select", "expenses", time.Now())

	e, err := scanExpense(r.q.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to find expense", zap.Int64("expense_id", id), zap.Error(err))
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return e, nil
}

// ListSince returns the user's expenses dated at or after since, newest first.
func (r *ExpenseRepository) ListSince(ctx context.Context, userID int64, since time.Time) ([]*model.Expense, error) {
	defer observe("select", "expenses", time.Now())

	query := `
        SELECT ` + expenseColumns + `
        FROM expenses
        WHERE user_id = $1 AND date >= $2
        ORDER BY date DESC, id DESC
    `
	rs, err := r.q.Query(ctx, query, userID, since)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rs.Close()

	var out []*model.Expense
	for rs.Next() {
		e, err := scanExpense(rs)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *ExpenseRepository) UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) error {
	defer observe("update", "expenses", time.Now())

	cents, err := toCents(amount)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := r.q.Exec(ctx, `UPDATE expenses SET amount_cents = $2 WHERE id = $1`, id, cents)
	if err != nil {
		r.logger.Error("Failed to update expense amount", zap.Int64("expense_id", id), zap.Error(err))
		return fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	r.logger.Info("Expense amount updated", zap.Int64("expense_id", id))
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	defer observe("delete", "expenses", time.Now())

	n, err := r.q.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.Int64("expense_id", id), zap.Error(err))
		return fmt.Errorf("delete expense: %w", err)
	}
	r.logger.Info("Expense deleted", zap.Int64("expense_id", id), zap.Int64("rows", n))
	return nil
}
