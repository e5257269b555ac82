package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sellers-pro/sellers_pro/internal/infra"
)

// Repository persists accounts. Implementations must reject duplicate phone numbers
// and channel ids with ErrConflict.
type Repository interface {
	Create(ctx context.Context, account Account) error
	FindByID(ctx context.Context, id string) (Account, error)
	// FindByChannelOrPhone matches either key in one lookup, preferring the phone match
	// when both keys hit different accounts. An empty phone matches by channel only.
	FindByChannelOrPhone(ctx context.Context, channelID, phone string) (Account, error)
	// ConfirmChannel swaps a placeholder identity for a real one. It reports false when
	// the account was already confirmed.
	ConfirmChannel(ctx context.Context, id, channelID string, profile Profile) (bool, error)
	SaveSubscription(ctx context.Context, id string, sub Subscription) error
	// ExpireSubscription deactivates an active subscription whose end date is not after now.
	ExpireSubscription(ctx context.Context, id string, now time.Time) (bool, error)
	List(ctx context.Context, limit int) ([]Account, error)
	UpsertProgress(ctx context.Context, id string, progress Progress) error
	Stats(ctx context.Context, since time.Time) (Stats, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db infra.DB
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db infra.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id::text, channel_id, channel_confirmed, first_name, last_name, username, phone_number,
        sub_tier, sub_active, sub_start_date, sub_end_date, created_at`

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, account Account) error {
	id, err := uuid.Parse(account.ID)
	if err != nil {
		return err
	}
	sub := account.Subscription
	_, err = r.db.Exec(ctx, `INSERT INTO accounts (id, channel_id, channel_confirmed, first_name, last_name, username,
        phone_number, sub_tier, sub_active, sub_start_date, sub_end_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, account.Channel.ID(), account.Channel.Confirmed(), account.Profile.FirstName, account.Profile.LastName,
		account.Profile.Username, account.PhoneNumber, string(sub.Tier), sub.Active, sub.StartDate, sub.EndDate,
		account.CreatedAt.UTC())
	if infra.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// FindByID fetches an account and its progress.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Account{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return r.withProgress(ctx, row)
}

// FindByChannelOrPhone runs a single OR query over both identity keys.
func (r *PostgresRepository) FindByChannelOrPhone(ctx context.Context, channelID, phone string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts
        WHERE channel_id = $1 OR ($2 <> '' AND phone_number = $2)
        ORDER BY (phone_number = $2) DESC
        LIMIT 1`, channelID, phone)
	return r.withProgress(ctx, row)
}

// ConfirmChannel replaces a placeholder channel id, guarded on the unconfirmed state.
func (r *PostgresRepository) ConfirmChannel(ctx context.Context, id, channelID string, profile Profile) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts
        SET channel_id = $2, channel_confirmed = TRUE, first_name = $3, last_name = $4, username = $5
        WHERE id = $1 AND NOT channel_confirmed`,
		id, channelID, profile.FirstName, profile.LastName, profile.Username)
	if infra.IsUniqueViolation(err) {
		return false, ErrConflict
	}
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// SaveSubscription overwrites the subscription columns.
func (r *PostgresRepository) SaveSubscription(ctx context.Context, id string, sub Subscription) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET sub_tier = $2, sub_active = $3, sub_start_date = $4, sub_end_date = $5
        WHERE id = $1`, id, string(sub.Tier), sub.Active, sub.StartDate, sub.EndDate)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpireSubscription flips a lapsed subscription to inactive.
func (r *PostgresRepository) ExpireSubscription(ctx context.Context, id string, now time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET sub_active = FALSE
        WHERE id = $1 AND sub_active AND sub_end_date IS NOT NULL AND sub_end_date <= $2`, id, now.UTC())
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// List returns accounts newest first. A non-positive limit returns all of them.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		accounts []Account
		index    = map[string]int{}
		ids      []string
	)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		index[account.ID] = len(accounts)
		ids = append(ids, account.ID)
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return accounts, nil
	}

	progressRows, err := r.db.Query(ctx, `SELECT account_id::text, lesson_id, completed, completed_at
        FROM lesson_progress WHERE account_id::text = ANY($1) ORDER BY lesson_id`, ids)
	if err != nil {
		return nil, err
	}
	defer progressRows.Close()
	for progressRows.Next() {
		var (
			accountID string
			p         Progress
		)
		if err := progressRows.Scan(&accountID, &p.LessonID, &p.Completed, &p.CompletedAt); err != nil {
			return nil, err
		}
		if i, ok := index[accountID]; ok {
			p.CompletedAt = p.CompletedAt.UTC()
			accounts[i].Progress = append(accounts[i].Progress, p)
		}
	}
	return accounts, progressRows.Err()
}

// UpsertProgress records or overwrites a lesson's progress.
func (r *PostgresRepository) UpsertProgress(ctx context.Context, id string, progress Progress) error {
	_, err := r.db.Exec(ctx, `INSERT INTO lesson_progress (account_id, lesson_id, completed, completed_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (account_id, lesson_id) DO UPDATE SET completed = EXCLUDED.completed, completed_at = EXCLUDED.completed_at`,
		id, progress.LessonID, progress.Completed, progress.CompletedAt.UTC())
	return err
}

// Stats aggregates dashboard counters.
func (r *PostgresRepository) Stats(ctx context.Context, since time.Time) (Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `SELECT
            count(*),
            count(*) FILTER (WHERE sub_active),
            (SELECT count(*) FROM lesson_progress WHERE completed),
            count(*) FILTER (WHERE created_at >= $1)
        FROM accounts`, since.UTC()).Scan(&s.TotalAccounts, &s.ActiveSubscriptions, &s.CompletedLessons, &s.CreatedSince)
	return s, err
}

func (r *PostgresRepository) withProgress(ctx context.Context, row pgx.Row) (Account, error) {
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}

	rows, err := r.db.Query(ctx, `SELECT lesson_id, completed, completed_at FROM lesson_progress
        WHERE account_id = $1 ORDER BY lesson_id`, account.ID)
	if err != nil {
		return Account{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var p Progress
		if err := rows.Scan(&p.LessonID, &p.Completed, &p.CompletedAt); err != nil {
			return Account{}, err
		}
		p.CompletedAt = p.CompletedAt.UTC()
		account.Progress = append(account.Progress, p)
	}
	return account, rows.Err()
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		account   Account
		channelID string
		confirmed bool
		tier      string
		createdAt time.Time
	)
	err := row.Scan(&account.ID, &channelID, &confirmed, &account.Profile.FirstName, &account.Profile.LastName,
		&account.Profile.Username, &account.PhoneNumber, &tier, &account.Subscription.Active,
		&account.Subscription.StartDate, &account.Subscription.EndDate, &createdAt)
	if err != nil {
		return Account{}, err
	}
	if confirmed {
		account.Channel = ConfirmedIdentity(channelID)
	} else {
		account.Channel = UnconfirmedIdentity(channelID)
	}
	account.Subscription.Tier = Tier(tier)
	account.CreatedAt = createdAt.UTC()
	return account, nil
}
