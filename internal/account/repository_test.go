package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountRowColumns = []string{"id", "channel_id", "channel_confirmed", "first_name", "last_name", "username",
	"phone_number", "sub_tier", "sub_active", "sub_start_date", "sub_end_date", "created_at"}

const testAccountID = "4f1f5d38-9a51-4b5e-8b3f-6f8d0f3f9d11"

func TestPostgresRepository_CreateMapsUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(pgxmock.AnyArg(), "7001", true, "Aziz", "", "", "+998901234567", "basic", false,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_phone_number_key"})

	repo := NewPostgresRepository(mock)
	err = repo.Create(context.Background(), Account{
		ID:           testAccountID,
		Channel:      ConfirmedIdentity("7001"),
		Profile:      Profile{FirstName: "Aziz"},
		PhoneNumber:  "+998901234567",
		Subscription: Subscription{Tier: TierBasic},
		CreatedAt:    fixedNow(),
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByChannelOrPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	end := fixedNow().AddDate(0, 0, 30)
	start := fixedNow()
	completedAt := fixedNow().Add(time.Hour)
	mock.ExpectQuery("FROM accounts").
		WithArgs("7001", "+998901234567").
		WillReturnRows(pgxmock.NewRows(accountRowColumns).
			AddRow(testAccountID, "manual_x", false, "Aziz", "Karimov", "", "+998901234567",
				"premium", true, &start, &end, fixedNow()))
	mock.ExpectQuery("FROM lesson_progress").
		WithArgs(testAccountID).
		WillReturnRows(pgxmock.NewRows([]string{"lesson_id", "completed", "completed_at"}).
			AddRow(1, true, completedAt))

	repo := NewPostgresRepository(mock)
	acct, err := repo.FindByChannelOrPhone(context.Background(), "7001", "+998901234567")
	require.NoError(t, err)
	assert.Equal(t, testAccountID, acct.ID)
	assert.False(t, acct.Channel.Confirmed())
	assert.Equal(t, "manual_x", acct.Channel.ID())
	assert.Equal(t, TierPremium, acct.Subscription.Tier)
	require.NotNil(t, acct.Subscription.EndDate)
	assert.Equal(t, end, *acct.Subscription.EndDate)
	require.Len(t, acct.Progress, 1)
	assert.Equal(t, 1, acct.Progress[0].LessonID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM accounts WHERE id").
		WithArgs(testAccountID).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	_, err = repo.FindByID(context.Background(), testAccountID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ConfirmChannel(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	profile := Profile{FirstName: "Aziz", Username: "aziz"}
	mock.ExpectExec("UPDATE accounts").
		WithArgs(testAccountID, "7001", "Aziz", "", "aziz").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE accounts").
		WithArgs(testAccountID, "7001", "Aziz", "", "aziz").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec("UPDATE accounts").
		WithArgs(testAccountID, "7002", "Aziz", "", "aziz").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewPostgresRepository(mock)
	ok, err := repo.ConfirmChannel(context.Background(), testAccountID, "7001", profile)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConfirmChannel(context.Background(), testAccountID, "7001", profile)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.ConfirmChannel(context.Background(), testAccountID, "7002", profile)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ExpireSubscription(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE accounts SET sub_active = FALSE .* sub_end_date <= \$2`).
		WithArgs(testAccountID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewPostgresRepository(mock)
	expired, err := repo.ExpireSubscription(context.Background(), testAccountID, fixedNow())
	require.NoError(t, err)
	assert.True(t, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveSubscriptionMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE accounts SET sub_tier").
		WithArgs(testAccountID, "premium", true, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	err = repo.SaveSubscription(context.Background(), testAccountID, Subscription{Tier: TierPremium, Active: true})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM accounts").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"total", "active", "lessons", "today"}).
			AddRow(int64(12), int64(5), int64(40), int64(2)))

	repo := NewPostgresRepository(mock)
	stats, err := repo.Stats(context.Background(), fixedNow())
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalAccounts: 12, ActiveSubscriptions: 5, CompletedLessons: 40, CreatedSince: 2}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_PropagatesStoreErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO lesson_progress").
		WithArgs(testAccountID, 2, true, pgxmock.AnyArg()).
		WillReturnError(boom)

	repo := NewPostgresRepository(mock)
	err = repo.UpsertProgress(context.Background(), testAccountID, Progress{LessonID: 2, Completed: true, CompletedAt: fixedNow()})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
