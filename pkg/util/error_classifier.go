package util

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ClassifyError maps a failed turn's error to a coarse label for logs and metrics.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "context_canceled"
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return "not_found"
	}
	if errors.Is(err, pgx.ErrTxClosed) || errors.Is(err, sql.ErrTxDone) {
		return "tx_closed"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23xxx: integrity constraint violation
		if strings.HasPrefix(pgErr.Code, "23") {
			return "constraint_violation"
		}
		return "db_error"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "network_timeout"
		}
		return "network_error"
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "UNIQUE constraint") || strings.Contains(errStr, "duplicate key"):
		return "constraint_violation"
	case strings.Contains(errStr, "database is locked"):
		return "db_locked"
	case strings.Contains(errStr, "telegram"):
		return "transport_error"
	}
	return "unknown_error"
}
