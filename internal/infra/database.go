package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the query surface repositories need. *pgxpool.Pool satisfies it, and so does
// pgxmock's pool in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const UniqueViolation = "23505"

// NewPostgresPool configures and returns a PostgreSQL connection pool.
func NewPostgresPool(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("database url is required")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
        id                UUID PRIMARY KEY,
        channel_id        TEXT NOT NULL UNIQUE,
        channel_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
        first_name        TEXT NOT NULL,
        last_name         TEXT NOT NULL DEFAULT '',
        username          TEXT NOT NULL DEFAULT '',
        phone_number      TEXT NOT NULL UNIQUE,
        sub_tier          TEXT NOT NULL DEFAULT 'basic',
        sub_active        BOOLEAN NOT NULL DEFAULT FALSE,
        sub_start_date    TIMESTAMPTZ,
        sub_end_date      TIMESTAMPTZ,
        created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS lesson_progress (
        account_id   UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
        lesson_id    INTEGER NOT NULL,
        completed    BOOLEAN NOT NULL DEFAULT FALSE,
        completed_at TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (account_id, lesson_id)
    )`,
	`CREATE TABLE IF NOT EXISTS one_time_codes (
        id           UUID PRIMARY KEY,
        channel_id   TEXT NOT NULL,
        phone_number TEXT NOT NULL DEFAULT '',
        code         TEXT NOT NULL,
        expires_at   TIMESTAMPTZ NOT NULL,
        consumed     BOOLEAN NOT NULL DEFAULT FALSE,
        created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS one_time_codes_code_idx ON one_time_codes (code) WHERE NOT consumed`,
	`CREATE INDEX IF NOT EXISTS one_time_codes_expires_at_idx ON one_time_codes (expires_at)`,
}

// EnsureSchema creates the tables and indexes the service relies on, including the
// unique constraints that turn duplicate-account races into detectable conflicts.
func EnsureSchema(ctx context.Context, db DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
