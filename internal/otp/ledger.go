package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for a wrong, expired or already consumed code.
	// Callers cannot tell the three cases apart.
	ErrNotFound = errors.New("one-time code not found")
)

const (
	// CodeLength is the fixed width of issued codes.
	CodeLength = 6
	// DefaultTTL is how long an issued code stays redeemable.
	DefaultTTL = time.Minute
	// DefaultRetentionGrace is how long a code is kept after expiry before it is purged.
	DefaultRetentionGrace = 120 * time.Second
)

// Code is an issued one-time code.
type Code struct {
	ID          string
	ChannelID   string
	PhoneNumber string
	Value       string
	ExpiresAt   time.Time
	Consumed    bool
	CreatedAt   time.Time
}

// Redeemable reports whether the code can still be consumed at now.
func (c Code) Redeemable(now time.Time) bool {
	return !c.Consumed && now.Before(c.ExpiresAt)
}

// Store is the persistence contract implemented by code backends (e.g. Postgres).
type Store interface {
	Insert(ctx context.Context, code Code) error
	// Consume atomically marks one unconsumed, unexpired code with the given value as
	// consumed and returns it. At most one caller can consume a given record.
	Consume(ctx context.Context, value string, now time.Time) (Code, error)
	// Purge deletes codes that expired before the cutoff and returns how many were removed.
	Purge(ctx context.Context, expiredBefore time.Time) (int64, error)
}

// Ledger issues and redeems one-time codes.
type Ledger struct {
	store Store
	gen   Generator
	now   func() time.Time
}

// NewLedger builds a ledger. A nil generator falls back to RandomGenerator and a nil
// clock to time.Now.
func NewLedger(store Store, gen Generator, now func() time.Time) *Ledger {
	if gen == nil {
		gen = RandomGenerator{}
	}
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, gen: gen, now: now}
}

// Issue generates and persists a new code owned by channelID. phoneNumber is only
// known on first contact and may be empty.
func (l *Ledger) Issue(ctx context.Context, channelID, phoneNumber string, ttl time.Duration) (Code, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	value, err := l.gen.Generate()
	if err != nil {
		return Code{}, fmt.Errorf("generate code: %w", err)
	}

	now := l.now().UTC()
	code := Code{
		ID:          uuid.NewString(),
		ChannelID:   channelID,
		PhoneNumber: phoneNumber,
		Value:       value,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}
	if err := l.store.Insert(ctx, code); err != nil {
		return Code{}, fmt.Errorf("insert code: %w", err)
	}
	return code, nil
}

// Redeem consumes a code by value alone. The returned code identifies its owner.
func (l *Ledger) Redeem(ctx context.Context, value string) (Code, error) {
	if !ValidFormat(value) {
		return Code{}, ErrNotFound
	}
	code, err := l.store.Consume(ctx, value, l.now().UTC())
	if err != nil {
		return Code{}, err
	}
	code.Consumed = true
	return code, nil
}
