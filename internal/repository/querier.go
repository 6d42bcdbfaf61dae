package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"ledgerbot/internal/model"
	"ledgerbot/pkg/metrics"
)

// querier is the subset of a transaction the repositories use. SQL is written
// with postgres-style $n placeholders; the sqlite adapter rewrites them.
type querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) row
	Query(ctx context.Context, query string, args ...any) (rows, error)
}

type row interface {
	Scan(dest ...any) error
}

type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// ─── pgx ────────────────────────────────────────────────────────────────────

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgxTx) QueryRow(ctx context.Context, query string, args ...any) row {
	return t.tx.QueryRow(ctx, query, args...)
}

func (t *pgxTx) Query(ctx context.Context, query string, args ...any) (rows, error) {
	return t.tx.Query(ctx, query, args...)
}

func (t *pgxTx) commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgxTx) rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// ─── database/sql (sqlite) ──────────────────────────────────────────────────

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// sqliteTime is fixed-width so stored timestamps sort lexicographically.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

type sqlTx struct {
	tx *sql.Tx
}

func rebind(query string) string {
	return placeholderRe.ReplaceAllString(query, "?$1")
}

func sqliteArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case time.Time:
			out[i] = v.UTC().Format(sqliteTime)
		case *time.Time:
			if v == nil {
				out[i] = nil
			} else {
				out[i] = v.UTC().Format(sqliteTime)
			}
		default:
			out[i] = a
		}
	}
	return out
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, rebind(query), sqliteArgs(args)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *sqlTx) QueryRow(ctx context.Context, query string, args ...any) row {
	return t.tx.QueryRowContext(ctx, rebind(query), sqliteArgs(args)...)
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (rows, error) {
	r, err := t.tx.QueryContext(ctx, rebind(query), sqliteArgs(args)...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{Rows: r}, nil
}

func (t *sqlTx) commit(context.Context) error   { return t.tx.Commit() }
func (t *sqlTx) rollback(context.Context) error { return t.tx.Rollback() }

type sqlRows struct {
	*sql.Rows
}

func (r *sqlRows) Close() { _ = r.Rows.Close() }

// ─── scanning helpers ───────────────────────────────────────────────────────

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// timeScanner accepts native timestamps (pgx) and text timestamps (sqlite).
type timeScanner struct {
	dst  *time.Time
	null **time.Time
}

func scanTime(dst *time.Time) *timeScanner      { return &timeScanner{dst: dst} }
func scanNullTime(dst **time.Time) *timeScanner { return &timeScanner{null: dst} }

func (s *timeScanner) Scan(src any) error {
	var t time.Time
	switch v := src.(type) {
	case nil:
		if s.null != nil {
			*s.null = nil
			return nil
		}
		return fmt.Errorf("cannot scan NULL into time.Time")
	case time.Time:
		t = v
	case string:
		parsed, err := parseTime(v)
		if err != nil {
			return err
		}
		t = parsed
	case []byte:
		parsed, err := parseTime(string(v))
		if err != nil {
			return err
		}
		t = parsed
	default:
		return fmt.Errorf("cannot scan %T into time.Time", src)
	}

	if s.null != nil {
		*s.null = &t
	} else {
		*s.dst = t
	}
	return nil
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range []string{sqliteTime, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

// Amounts are persisted as integer minor units so sums stay exact on every backend.

func toCents(d decimal.Decimal) (int64, error) {
	if d.Abs().GreaterThan(model.MaxAmount) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, d)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func nullCents(d decimal.NullDecimal) (*int64, error) {
	if !d.Valid {
		return nil, nil
	}
	c, err := toCents(d.Decimal)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func fromNullCents(c *int64) decimal.NullDecimal {
	if c == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(fromCents(*c))
}

func observe(operation, table string, start time.Time) {
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))
}
