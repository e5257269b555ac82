package otp

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu    sync.Mutex
	codes []Code
}

// NewMemoryStore creates a concurrency-safe in-memory code store useful for tests and
// local development.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Insert(_ context.Context, code Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return nil
}

func (s *memoryStore) Consume(_ context.Context, value string, now time.Time) (Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := -1
	for i, c := range s.codes {
		if c.Value != value || !c.Redeemable(now) {
			continue
		}
		if match == -1 || c.CreatedAt.Before(s.codes[match].CreatedAt) {
			match = i
		}
	}
	if match == -1 {
		return Code{}, ErrNotFound
	}
	s.codes[match].Consumed = true
	return s.codes[match], nil
}

func (s *memoryStore) Purge(_ context.Context, expiredBefore time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.codes[:0]
	var removed int64
	for _, c := range s.codes {
		if c.ExpiresAt.Before(expiredBefore) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.codes = kept
	return removed, nil
}
