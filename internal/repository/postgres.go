package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ledgerbot/pkg/config"
	"ledgerbot/pkg/db"
)

// PostgresStore is the server backend, one pgx transaction per Session.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects using the shared pool settings in pkg/db.
func NewPostgresStore(cfg config.DBConfig, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := db.NewConnection(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewPostgresStoreFromPool(pool, logger), nil
}

func NewPostgresStoreFromPool(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

func (s *PostgresStore) Begin(ctx context.Context) (*Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("begin: %w", err)
	}
	return newSession(&pgxTx{tx: tx}, s.logger), nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range postgresSchema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			s.logger.Error("Migration statement failed", zap.Error(err))
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	s.logger.Info("Schema applied", zap.String("driver", config.DriverPostgres))
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
