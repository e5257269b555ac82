package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string        `env:"APP_NAME" envDefault:"SellersPro"`
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	Port           string        `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	DatabaseConns  int32         `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	RedisURL       string        `env:"REDIS_URL"`
	ShutdownPeriod time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	OTPTTL            time.Duration `env:"OTP_TTL" envDefault:"60s"`
	OTPRetentionGrace time.Duration `env:"OTP_RETENTION_GRACE" envDefault:"120s"`
	OTPSweepInterval  time.Duration `env:"OTP_SWEEP_INTERVAL" envDefault:"1m"`

	TelegramBotToken      string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL        string `env:"TELEGRAM_API_URL"`
	TelegramWebhookSecret string `env:"TELEGRAM_WEBHOOK_SECRET"`
	BackendURL            string `env:"BACKEND_URL"`

	AdminTokenHash string `env:"ADMIN_TOKEN_HASH"`
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.DatabaseURL == "" && !cfg.IsDev() {
		return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}
	if cfg.OTPTTL <= 0 || cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("OTP_TTL and SESSION_TTL must be positive")
	}
	if cfg.OTPSweepInterval <= 0 {
		return Config{}, fmt.Errorf("OTP_SWEEP_INTERVAL must be positive")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local development environment, where the
// in-memory stores may stand in for Postgres.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// WebhookURL is where Telegram should deliver updates, or "" without BACKEND_URL.
func (c Config) WebhookURL() string {
	if c.BackendURL == "" {
		return ""
	}
	return c.BackendURL + "/api/telegram-webhook"
}
