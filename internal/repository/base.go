package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"canteen/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// base carries the per-call timeout and read retry policy shared by all repositories.
type base struct {
	db      *sqlx.DB
	timeout time.Duration
	retries int
}

func newBase(db *sqlx.DB, opts Options) *base {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.ReadRetries < 0 {
		opts.ReadRetries = 0
	}
	return &base{db: db, timeout: opts.Timeout, retries: opts.ReadRetries}
}

// read runs an idempotent query, retrying transient failures.
func (b *base) read(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= b.retries; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, b.timeout)
		err = fn(cctx)
		cancel()
		if err == nil || !transient(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

// write runs a statement exactly once under the call timeout.
func (b *base) write(ctx context.Context, fn func(ctx context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return fn(cctx)
}

// inTx runs fn in a transaction, rolling back on any error.
func (b *base) inTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	return b.write(ctx, func(ctx context.Context) error {
		tx, err := b.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := fn(ctx, tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

func transient(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err)
}

// mapError translates driver errors into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: referenced record does not exist", domain.ErrValidation)
		}
	}
	return err
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// exec runs a write that must touch exactly one row.
func (b *base) exec(ctx context.Context, op, query string, args ...any) error {
	err := b.write(ctx, func(ctx context.Context) error {
		res, err := b.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
	if err != nil {
		return fmt.Errorf("%s %v: %w", op, args[0], mapError(err))
	}
	return nil
}
