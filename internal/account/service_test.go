package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ProvisionDefaults(t *testing.T) {
	svc := NewService(NewMemoryRepository(), fixedNow)

	acct, err := svc.Provision(context.Background(), ProvisionInput{PhoneNumber: " 998901234567 ", FirstName: "Aziz"})
	require.NoError(t, err)
	assert.Equal(t, "+998901234567", acct.PhoneNumber)
	assert.False(t, acct.Channel.Confirmed())
	assert.Contains(t, acct.Channel.ID(), "manual_")
	assert.Equal(t, TierPremium, acct.Subscription.Tier)
	assert.True(t, acct.Subscription.Active)
	require.NotNil(t, acct.Subscription.EndDate)
	assert.Equal(t, fixedNow().AddDate(0, 0, 30), *acct.Subscription.EndDate)
}

func TestService_ProvisionWithChannel(t *testing.T) {
	svc := NewService(NewMemoryRepository(), fixedNow)

	acct, err := svc.Provision(context.Background(), ProvisionInput{PhoneNumber: "+998901234567", FirstName: "Aziz", ChannelID: "7001", DurationDays: 7})
	require.NoError(t, err)
	assert.True(t, acct.Channel.Confirmed())
	assert.Equal(t, "7001", acct.Channel.ID())
	assert.Equal(t, fixedNow().AddDate(0, 0, 7), *acct.Subscription.EndDate)
}

func TestService_ProvisionRejectsDuplicatesAndBadInput(t *testing.T) {
	svc := NewService(NewMemoryRepository(), fixedNow)
	ctx := context.Background()

	_, err := svc.Provision(ctx, ProvisionInput{PhoneNumber: "+998901234567", FirstName: "Aziz"})
	require.NoError(t, err)

	_, err = svc.Provision(ctx, ProvisionInput{PhoneNumber: "998901234567", FirstName: "Aziz"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Provision(ctx, ProvisionInput{PhoneNumber: "+998900000000"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_UpdateSubscription(t *testing.T) {
	repo := NewMemoryRepository()
	r := NewResolver(repo, fixedNow, nil)
	ctx := context.Background()
	acct, err := r.ResolveOnFirstContact(ctx, "7001", "+998901234567", Profile{FirstName: "Aziz"})
	require.NoError(t, err)
	require.Nil(t, acct.Subscription.StartDate)

	svc := NewService(repo, fixedNow)
	active := true
	updated, err := svc.UpdateSubscription(ctx, SubscriptionUpdate{AccountID: acct.ID, Active: &active, Tier: TierPremium, DurationDays: 10})
	require.NoError(t, err)
	assert.True(t, updated.Subscription.Active)
	assert.Equal(t, TierPremium, updated.Subscription.Tier)
	require.NotNil(t, updated.Subscription.StartDate)
	assert.Equal(t, fixedNow(), *updated.Subscription.StartDate)
	assert.Equal(t, fixedNow().AddDate(0, 0, 10), *updated.Subscription.EndDate)

	inactive := false
	revoked, err := svc.UpdateSubscription(ctx, SubscriptionUpdate{AccountID: acct.ID, Active: &inactive})
	require.NoError(t, err)
	assert.False(t, revoked.Subscription.Active)
	assert.Equal(t, fixedNow(), *revoked.Subscription.StartDate)

	_, err = svc.UpdateSubscription(ctx, SubscriptionUpdate{AccountID: acct.ID, Tier: "gold"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.UpdateSubscription(ctx, SubscriptionUpdate{AccountID: "missing", Active: &active})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_CompleteLessonAndStats(t *testing.T) {
	repo := NewMemoryRepository()
	now := fixedNow()
	svc := NewService(repo, func() time.Time { return now })
	ctx := context.Background()

	acct, err := svc.Provision(ctx, ProvisionInput{PhoneNumber: "+998901234567", FirstName: "Aziz"})
	require.NoError(t, err)

	progress, err := svc.CompleteLesson(ctx, acct.ID, 3)
	require.NoError(t, err)
	progress, err = svc.CompleteLesson(ctx, acct.ID, 1)
	require.NoError(t, err)
	progress, err = svc.CompleteLesson(ctx, acct.ID, 3)
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, 1, progress[0].LessonID)
	assert.Equal(t, 3, progress[1].LessonID)

	_, err = svc.CompleteLesson(ctx, acct.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CompleteLesson(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalAccounts: 1, ActiveSubscriptions: 1, CompletedLessons: 2, CreatedSince: 1}, stats)
}
