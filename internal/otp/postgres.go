package otp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sellers-pro/sellers_pro/internal/infra"
)

// PostgresStore persists one-time codes in PostgreSQL.
type PostgresStore struct {
	db infra.DB
}

// NewPostgresStore constructs a Postgres-backed code store.
func NewPostgresStore(db infra.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert stores a freshly issued code.
func (s *PostgresStore) Insert(ctx context.Context, code Code) error {
	id, err := uuid.Parse(code.ID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO one_time_codes (id, channel_id, phone_number, code, expires_at, consumed, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, code.ChannelID, code.PhoneNumber, code.Value, code.ExpiresAt.UTC(), false, code.CreatedAt.UTC())
	return err
}

// consumeQuery picks the oldest redeemable row and flips it in one statement. Rows
// locked by a concurrent redeemer are skipped and the outer NOT consumed re-check
// guarantees a row is consumed at most once.
const consumeQuery = `
        UPDATE one_time_codes SET consumed = TRUE
        WHERE id = (
            SELECT id FROM one_time_codes
            WHERE code = $1 AND NOT consumed AND expires_at > $2
            ORDER BY created_at
            LIMIT 1
            FOR UPDATE SKIP LOCKED
        ) AND NOT consumed
        RETURNING id::text, channel_id, phone_number, code, expires_at, created_at`

// Consume atomically marks a redeemable code as consumed.
func (s *PostgresStore) Consume(ctx context.Context, value string, now time.Time) (Code, error) {
	var (
		expiresAt time.Time
		createdAt time.Time
		code      Code
	)
	row := s.db.QueryRow(ctx, consumeQuery, value, now.UTC())
	if err := row.Scan(&code.ID, &code.ChannelID, &code.PhoneNumber, &code.Value, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Code{}, ErrNotFound
		}
		return Code{}, err
	}
	code.ExpiresAt = expiresAt.UTC()
	code.CreatedAt = createdAt.UTC()
	code.Consumed = true
	return code, nil
}

// Purge deletes codes whose expiry is older than the cutoff.
func (s *PostgresStore) Purge(ctx context.Context, expiredBefore time.Time) (int64, error) {
	cmd, err := s.db.Exec(ctx, `DELETE FROM one_time_codes WHERE expires_at < $1`, expiredBefore.UTC())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
