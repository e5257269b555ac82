package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const maxResolveAttempts = 3

// Resolver reconciles a messaging-channel identity and a phone number into one account.
type Resolver struct {
	repo   Repository
	now    func() time.Time
	logger *slog.Logger
}

// NewResolver builds an identity resolver.
func NewResolver(repo Repository, now func() time.Time, logger *slog.Logger) *Resolver {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{repo: repo, now: now, logger: logger}
}

// ResolveOnFirstContact finds, creates or merges the account for a learner who shared
// their phone number over the messaging channel. The caller must already have checked
// that the phone belongs to channelID.
//
// A unique-constraint conflict means a concurrent request won the insert; the lookup
// is retried instead of reporting an error.
func (r *Resolver) ResolveOnFirstContact(ctx context.Context, channelID, phone string, profile Profile) (Account, error) {
	phone = NormalizePhone(phone)
	if channelID == "" || phone == "" {
		return Account{}, ErrInvalidInput
	}

	for attempt := 1; attempt <= maxResolveAttempts; attempt++ {
		existing, err := r.repo.FindByChannelOrPhone(ctx, channelID, phone)
		switch {
		case errors.Is(err, ErrNotFound):
			created, err := r.create(ctx, channelID, phone, profile)
			if errors.Is(err, ErrConflict) {
				r.logger.Info("account insert lost race, retrying lookup", slog.Int("attempt", attempt))
				continue
			}
			return created, err
		case err != nil:
			return Account{}, err
		}

		if existing.Channel.Confirmed() {
			return existing, nil
		}

		merged, done, err := r.confirm(ctx, existing, channelID, profile)
		if err != nil || done {
			return merged, err
		}
	}
	return Account{}, fmt.Errorf("resolve identity after %d attempts: %w", maxResolveAttempts, ErrConflict)
}

func (r *Resolver) create(ctx context.Context, channelID, phone string, profile Profile) (Account, error) {
	account := Account{
		ID:           uuid.NewString(),
		Channel:      ConfirmedIdentity(channelID),
		Profile:      profile,
		PhoneNumber:  phone,
		Subscription: Subscription{Tier: TierBasic},
		CreatedAt:    r.now().UTC(),
	}
	if err := r.repo.Create(ctx, account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// confirm attaches channelID to a provisioned placeholder account. done is false when
// another request confirmed it first and the caller should look again.
func (r *Resolver) confirm(ctx context.Context, existing Account, channelID string, profile Profile) (Account, bool, error) {
	merged := existing.Profile.overlay(profile)
	ok, err := r.repo.ConfirmChannel(ctx, existing.ID, channelID, merged)
	if errors.Is(err, ErrConflict) {
		// channelID already belongs to another confirmed account; that one wins.
		owner, err := r.repo.FindByChannelOrPhone(ctx, channelID, "")
		return owner, true, err
	}
	if err != nil {
		return Account{}, true, err
	}
	if !ok {
		return Account{}, false, nil
	}

	existing.Channel = ConfirmedIdentity(channelID)
	existing.Profile = merged
	r.logger.Info("placeholder account confirmed", slog.String("account_id", existing.ID))
	return existing, true, nil
}

// ClaimPlaceholder confirms account with channelID if it still carries a placeholder.
// Redemption uses it when the code's owner has no account under its channel id yet.
func (r *Resolver) ClaimPlaceholder(ctx context.Context, account Account, channelID string) (Account, error) {
	if account.Channel.Confirmed() || channelID == "" {
		return account, nil
	}
	claimed, done, err := r.confirm(ctx, account, channelID, Profile{})
	if err != nil {
		return Account{}, err
	}
	if !done {
		return r.repo.FindByID(ctx, account.ID)
	}
	return claimed, nil
}
