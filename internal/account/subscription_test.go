package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_HasAccess(t *testing.T) {
	now := fixedNow()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"inactive", Subscription{Active: false, EndDate: &future}, false},
		{"active without end", Subscription{Active: true}, true},
		{"active future end", Subscription{Active: true, EndDate: &future}, true},
		{"active past end", Subscription{Active: true, EndDate: &past}, false},
		{"active ends now", Subscription{Active: true, EndDate: &now}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sub.HasAccess(now))
		})
	}
}

func TestSubscription_LapsedAgreesWithHasAccess(t *testing.T) {
	now := fixedNow()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	for _, sub := range []Subscription{
		{Active: true},
		{Active: true, EndDate: &past},
		{Active: true, EndDate: &now},
		{Active: true, EndDate: &future},
	} {
		assert.Equal(t, !sub.HasAccess(now), sub.Lapsed(now), "end %v", sub.EndDate)
	}
	assert.False(t, Subscription{Active: false, EndDate: &past}.Lapsed(now))
}

func TestEvaluator_ReconcileAtExactEndInstant(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	start := fixedNow()
	acct, err := NewService(repo, func() time.Time { return start }).
		Provision(ctx, ProvisionInput{PhoneNumber: "+998901234567", FirstName: "Aziz", DurationDays: 1})
	require.NoError(t, err)
	require.NotNil(t, acct.Subscription.EndDate)

	end := *acct.Subscription.EndDate
	eval := NewEvaluator(repo, func() time.Time { return end })
	assert.False(t, eval.HasAccess(acct))

	reconciled, err := eval.Reconcile(ctx, acct)
	require.NoError(t, err)
	assert.False(t, reconciled.Subscription.Active)

	stored, err := repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, stored.Subscription.Active)
}

func TestEvaluator_ReconcileExpiresLapsedSubscription(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	start := fixedNow()
	acct, err := NewService(repo, func() time.Time { return start }).
		Provision(ctx, ProvisionInput{PhoneNumber: "+998901234567", FirstName: "Aziz", DurationDays: 1})
	require.NoError(t, err)

	later := start.Add(48 * time.Hour)
	eval := NewEvaluator(repo, func() time.Time { return later })
	assert.False(t, eval.HasAccess(acct))

	reconciled, err := eval.Reconcile(ctx, acct)
	require.NoError(t, err)
	assert.False(t, reconciled.Subscription.Active)

	stored, err := repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, stored.Subscription.Active)
	require.NotNil(t, stored.Subscription.EndDate)
}

func TestEvaluator_ReconcileLeavesCurrentSubscription(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	acct, err := NewService(repo, fixedNow).
		Provision(ctx, ProvisionInput{PhoneNumber: "+998901234567", FirstName: "Aziz"})
	require.NoError(t, err)

	eval := NewEvaluator(repo, fixedNow)
	assert.True(t, eval.HasAccess(acct))
	reconciled, err := eval.Reconcile(ctx, acct)
	require.NoError(t, err)
	assert.True(t, reconciled.Subscription.Active)
}
