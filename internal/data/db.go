package data

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/securitycam/central/internal/config"
)

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means an optimistic or state collision: unique-key reuse,
	// terminal transition attempted twice, artifact path mismatch.
	ErrConflict = errors.New("conflict")
	// ErrConstraint means a database constraint rejected the write.
	ErrConstraint = errors.New("constraint violation")
	// ErrUnavailable means transient infrastructure failure; callers may retry.
	ErrUnavailable = errors.New("storage unavailable")
)

// DBTX is the common interface over *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Open connects to PostgreSQL and configures the pool from config. The pool
// keeps min_connections idle and allows min+overflow open in total.
func Open(cfg config.DatabaseConfig, pool config.PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxIdleConns(pool.MinConnections)
	db.SetMaxOpenConns(pool.MinConnections + pool.MaxOverflow)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Ping verifies connectivity within the given timeout.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// classify maps driver errors onto the store's error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
		case "23503", "23502", "23514": // fk, not-null, check
			return fmt.Errorf("%w: %s", ErrConstraint, pqErr.Constraint)
		case "53300", "57P03", "08006", "08001": // too many conns, starting up, connection failures
			return fmt.Errorf("%w: %s", ErrUnavailable, pqErr.Message)
		}
	}
	return err
}
