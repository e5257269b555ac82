package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultProvisionDays = 30

// Service exposes the administrative and progress operations on accounts.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an account service.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// ProvisionInput captures an admin whitelist entry.
type ProvisionInput struct {
	PhoneNumber  string
	FirstName    string
	LastName     string
	ChannelID    string
	DurationDays int
}

// Provision creates a pre-activated premium account. Without a known channel id the
// account gets a placeholder identity that the learner claims on first login.
func (s *Service) Provision(ctx context.Context, in ProvisionInput) (Account, error) {
	phone := NormalizePhone(in.PhoneNumber)
	firstName := strings.TrimSpace(in.FirstName)
	if phone == "" || firstName == "" {
		return Account{}, fmt.Errorf("%w: phone number and first name are required", ErrInvalidInput)
	}

	channelID := strings.TrimSpace(in.ChannelID)
	if _, err := s.repo.FindByChannelOrPhone(ctx, channelID, phone); err == nil {
		return Account{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	identity := PlaceholderIdentity()
	if channelID != "" {
		identity = ConfirmedIdentity(channelID)
	}

	days := in.DurationDays
	if days <= 0 {
		days = defaultProvisionDays
	}
	now := s.now().UTC()
	end := now.AddDate(0, 0, days)

	account := Account{
		ID:          uuid.NewString(),
		Channel:     identity,
		Profile:     Profile{FirstName: firstName, LastName: strings.TrimSpace(in.LastName)},
		PhoneNumber: phone,
		Subscription: Subscription{
			Tier:      TierPremium,
			Active:    true,
			StartDate: &now,
			EndDate:   &end,
		},
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, ErrConflict) {
			return Account{}, ErrAlreadyExists
		}
		return Account{}, err
	}
	return account, nil
}

// SubscriptionUpdate changes an account's subscription. Nil Active keeps the current flag
// and an empty Tier keeps the current tier.
type SubscriptionUpdate struct {
	AccountID    string
	Active       *bool
	Tier         Tier
	DurationDays int
}

// UpdateSubscription applies an admin subscription change. Activating sets the start
// date if it was never set; a duration sets the end date that many days from now.
func (s *Service) UpdateSubscription(ctx context.Context, in SubscriptionUpdate) (Account, error) {
	if in.AccountID == "" {
		return Account{}, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	if in.Tier != "" && !in.Tier.Valid() {
		return Account{}, fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, in.Tier)
	}

	account, err := s.repo.FindByID(ctx, in.AccountID)
	if err != nil {
		return Account{}, err
	}

	sub := account.Subscription
	if in.Active != nil {
		sub.Active = *in.Active
	}
	if in.Tier != "" {
		sub.Tier = in.Tier
	}
	if sub.Tier == "" {
		sub.Tier = TierPremium
	}
	if in.Active != nil && *in.Active {
		now := s.now().UTC()
		if sub.StartDate == nil {
			sub.StartDate = &now
		}
		if in.DurationDays > 0 {
			end := now.AddDate(0, 0, in.DurationDays)
			sub.EndDate = &end
		}
	}

	if err := s.repo.SaveSubscription(ctx, account.ID, sub); err != nil {
		return Account{}, err
	}
	account.Subscription = sub
	return account, nil
}

// Get loads one account.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns accounts newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Account, error) {
	return s.repo.List(ctx, limit)
}

// Stats returns dashboard counters; CreatedSince counts accounts created since midnight UTC.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.Stats(ctx, midnight)
}

// Progress returns the account's lesson progress.
func (s *Service) Progress(ctx context.Context, accountID string) ([]Progress, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Progress, nil
}

// CompleteLesson marks a lesson completed and returns the updated progress.
func (s *Service) CompleteLesson(ctx context.Context, accountID string, lessonID int) ([]Progress, error) {
	if lessonID <= 0 {
		return nil, fmt.Errorf("%w: lesson id must be positive", ErrInvalidInput)
	}
	if _, err := s.repo.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	progress := Progress{LessonID: lessonID, Completed: true, CompletedAt: s.now().UTC()}
	if err := s.repo.UpsertProgress(ctx, accountID, progress); err != nil {
		return nil, err
	}
	return s.Progress(ctx, accountID)
}
