package account

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository builds an in-memory account store for tests and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, account Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.ID == account.ID || existing.PhoneNumber == account.PhoneNumber ||
			existing.Channel.ID() == account.Channel.ID() {
			return ErrConflict
		}
	}
	r.accounts[account.ID] = clone(account)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return clone(account), nil
}

func (r *memoryRepository) FindByChannelOrPhone(_ context.Context, channelID, phone string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var byChannel *Account
	for _, account := range r.accounts {
		if phone != "" && account.PhoneNumber == phone {
			return clone(account), nil
		}
		if account.Channel.ID() == channelID {
			found := account
			byChannel = &found
		}
	}
	if byChannel == nil {
		return Account{}, ErrNotFound
	}
	return clone(*byChannel), nil
}

func (r *memoryRepository) ConfirmChannel(_ context.Context, id, channelID string, profile Profile) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok || account.Channel.Confirmed() {
		return false, nil
	}
	for otherID, other := range r.accounts {
		if otherID != id && other.Channel.ID() == channelID {
			return false, ErrConflict
		}
	}
	account.Channel = ConfirmedIdentity(channelID)
	account.Profile = profile
	r.accounts[id] = account
	return true, nil
}

func (r *memoryRepository) SaveSubscription(_ context.Context, id string, sub Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.Subscription = sub
	r.accounts[id] = account
	return nil
}

func (r *memoryRepository) ExpireSubscription(_ context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return false, nil
	}
	sub := account.Subscription
	if !sub.Active || sub.EndDate == nil || sub.EndDate.After(now) {
		return false, nil
	}
	account.Subscription.Active = false
	r.accounts[id] = account
	return true, nil
}

func (r *memoryRepository) List(_ context.Context, limit int) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		out = append(out, clone(account))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) UpsertProgress(_ context.Context, id string, progress Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	replaced := false
	for i := range account.Progress {
		if account.Progress[i].LessonID == progress.LessonID {
			account.Progress[i] = progress
			replaced = true
		}
	}
	if !replaced {
		account.Progress = append(account.Progress, progress)
		sort.Slice(account.Progress, func(i, j int) bool { return account.Progress[i].LessonID < account.Progress[j].LessonID })
	}
	r.accounts[id] = account
	return nil
}

func (r *memoryRepository) Stats(_ context.Context, since time.Time) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s Stats
	for _, account := range r.accounts {
		s.TotalAccounts++
		if account.Subscription.Active {
			s.ActiveSubscriptions++
		}
		if !account.CreatedAt.Before(since) {
			s.CreatedSince++
		}
		for _, p := range account.Progress {
			if p.Completed {
				s.CompletedLessons++
			}
		}
	}
	return s, nil
}

// clone detaches the progress slice so callers cannot mutate stored state.
func clone(account Account) Account {
	if account.Progress != nil {
		account.Progress = append([]Progress(nil), account.Progress...)
	}
	return account
}
