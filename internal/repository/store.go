package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrNotFound is returned by single-record lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// ErrAmountOutOfRange is returned when an amount exceeds model.MaxAmount.
var ErrAmountOutOfRange = errors.New("amount out of range")

// Store opens one transactional Session per conversation turn.
type Store interface {
	Begin(ctx context.Context) (*Session, error)
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// txn is the backend-specific transaction behind a Session.
type txn interface {
	querier
	commit(ctx context.Context) error
	rollback(ctx context.Context) error
}

// Session 一个 turn 内所有读写共用的事务
type Session struct {
	tx   txn
	done bool

	projects *ProjectRepository
	tasks    *TaskRepository
	expenses *ExpenseRepository
	stats    *StatsRepository
}

func newSession(tx txn, logger *zap.Logger) *Session {
	return &Session{
		tx:       tx,
		projects: NewProjectRepository(tx, logger),
		tasks:    NewTaskRepository(tx, logger),
		expenses: NewExpenseRepository(tx, logger),
		stats:    NewStatsRepository(tx, logger),
	}
}

func (s *Session) Projects() *ProjectRepository { return s.projects }
func (s *Session) Tasks() *TaskRepository       { return s.tasks }
func (s *Session) Expenses() *ExpenseRepository { return s.expenses }
func (s *Session) Stats() *StatsRepository      { return s.stats }

// Commit commits the turn's mutations.
func (s *Session) Commit(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	return s.tx.commit(ctx)
}

// Rollback discards the turn's mutations. It is a no-op after Commit, so it
// can be deferred right after Begin.
func (s *Session) Rollback(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	return s.tx.rollback(ctx)
}
