// session.go implements the read/write entry points.
//
// Each call acquires a transaction, runs the statement, commits on
// success and rolls back on any failure. Errors are returned after the
// rollback, never swallowed.
package db

import (
	"context"
	"errors"
	"fmt"

	pgx "github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Row is one result row keyed by column name.
type Row map[string]any

// String returns the column as text; NULL and missing columns are "".
func (r Row) String(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Querier runs parametrized SQL. Queries use $1..$n placeholders.
type Querier interface {
	// Fetch runs a query and returns every row.
	Fetch(ctx context.Context, query string, args ...any) ([]Row, error)

	// Execute runs a statement that returns no rows.
	Execute(ctx context.Context, query string, args ...any) error
}

// Fetch runs a SELECT and returns all rows as column-name maps.
func (d *DB) Fetch(ctx context.Context, query string, args ...any) ([]Row, error) {
	var out []Row
	err := d.withSession(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		maps, err := pgx.CollectRows(rows, pgx.RowToMap)
		if err != nil {
			return err
		}
		out = make([]Row, len(maps))
		for i, m := range maps {
			out[i] = Row(m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Execute runs an INSERT/UPDATE/DELETE or DDL statement.
func (d *DB) Execute(ctx context.Context, query string, args ...any) error {
	return d.withSession(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query, args...)
		return err
	})
}

// withSession scopes fn to one transaction.
func (d *DB) withSession(ctx context.Context, fn func(pgx.Tx) error) error {
	if d.sessions == nil {
		return errors.New("db: not connected")
	}

	tx, err := d.sessions.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			d.log.Error("rollback failed", zap.Error(rbErr))
		}
		d.log.Error("session rollback because of error", zap.Error(err))
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
