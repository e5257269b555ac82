package account

import (
	"context"
	"time"
)

// HasAccess reports whether the subscription grants content access at now. An active
// subscription without an end date never lapses.
func (s Subscription) HasAccess(now time.Time) bool {
	return s.Active && (s.EndDate == nil || s.EndDate.After(now))
}

// Lapsed reports whether the subscription is still flagged active at or past its end date.
func (s Subscription) Lapsed(now time.Time) bool {
	return s.Active && s.EndDate != nil && !s.EndDate.After(now)
}

// Evaluator derives access rights and lazily expires stale subscriptions. There is no
// background sweep: each session verification corrects the account it touches.
type Evaluator struct {
	repo Repository
	now  func() time.Time
}

// NewEvaluator builds a subscription evaluator.
func NewEvaluator(repo Repository, now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{repo: repo, now: now}
}

// HasAccess evaluates access for account at the current time.
func (e *Evaluator) HasAccess(account Account) bool {
	return account.Subscription.HasAccess(e.now())
}

// Reconcile persists active=false for a lapsed subscription and returns the corrected account.
func (e *Evaluator) Reconcile(ctx context.Context, account Account) (Account, error) {
	now := e.now()
	if !account.Subscription.Lapsed(now) {
		return account, nil
	}
	if _, err := e.repo.ExpireSubscription(ctx, account.ID, now); err != nil {
		return account, err
	}
	account.Subscription.Active = false
	return account, nil
}
