package routes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sellers-pro/sellers_pro/internal/account"
	"github.com/sellers-pro/sellers_pro/internal/auth"
	"github.com/sellers-pro/sellers_pro/internal/config"
	"github.com/sellers-pro/sellers_pro/internal/notification"
	"github.com/sellers-pro/sellers_pro/internal/otp"
	"github.com/sellers-pro/sellers_pro/internal/session"
	"github.com/sellers-pro/sellers_pro/internal/telegram"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger

	Accounts *account.Service
	Auth     *auth.Service
	Sweeper  *otp.Sweeper
	// Telegram and Bot are nil when no bot token is configured.
	Telegram *telegram.Client
	Bot      *telegram.Bot
}

// Build constructs the domain services over Postgres, or over in-memory stores when
// db is nil.
func Build(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (Deps, error) {
	return build(cfg, db, cache, logger, time.Now, otp.RandomGenerator{})
}

func build(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger, now func() time.Time, gen otp.Generator) (Deps, error) {
	d := Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger}

	var (
		codeStore   otp.Store
		accountRepo account.Repository
	)
	if db != nil {
		codeStore = otp.NewPostgresStore(db)
		accountRepo = account.NewPostgresRepository(db)
	} else {
		codeStore = otp.NewMemoryStore()
		accountRepo = account.NewMemoryRepository()
	}

	issuer, err := session.NewIssuer(session.Config{
		Key:    []byte(cfg.JWTSecret),
		TTL:    cfg.SessionTTL,
		Issuer: cfg.AppName,
		Now:    now,
	})
	if err != nil {
		return Deps{}, fmt.Errorf("session issuer: %w", err)
	}

	var notifier notification.Notifier = notification.NewLoggerNotifier(logger)
	if cfg.TelegramBotToken != "" {
		client, err := telegram.NewClient(telegram.ClientConfig{Token: cfg.TelegramBotToken, APIURL: cfg.TelegramAPIURL})
		if err != nil {
			return Deps{}, err
		}
		d.Telegram = client
		notifier = client
	}

	d.Accounts = account.NewService(accountRepo, now)
	d.Auth = auth.NewService(auth.Deps{
		Ledger:    otp.NewLedger(codeStore, gen, now),
		Accounts:  accountRepo,
		Resolver:  account.NewResolver(accountRepo, now, logger),
		Evaluator: account.NewEvaluator(accountRepo, now),
		Sessions:  issuer,
		Notifier:  notifier,
		CodeTTL:   cfg.OTPTTL,
		Logger:    logger,
	})
	d.Sweeper = otp.NewSweeper(codeStore, otp.SweeperConfig{
		Grace:    cfg.OTPRetentionGrace,
		Interval: cfg.OTPSweepInterval,
		Now:      now,
	}, logger)
	if d.Telegram != nil {
		d.Bot = telegram.NewBot(d.Telegram, d.Auth, telegram.NewRedisDeduper(cache, 0), logger)
	}
	return d, nil
}
