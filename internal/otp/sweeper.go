package otp

import (
	"context"
	"log/slog"
	"time"
)

// SweeperConfig tunes the retention sweeper.
type SweeperConfig struct {
	Grace    time.Duration
	Interval time.Duration
	Now      func() time.Time
}

// Sweeper purges codes a grace period after they expire. Redeemability never depends
// on it; it only bounds table growth.
type Sweeper struct {
	store    Store
	grace    time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewSweeper builds a sweeper with defaults for zero config values.
func NewSweeper(store Store, cfg SweeperConfig, logger *slog.Logger) *Sweeper {
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultRetentionGrace
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, grace: cfg.Grace, interval: cfg.Interval, now: cfg.Now, logger: logger}
}

// SweepOnce removes every code that expired more than the grace period ago.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	return s.store.Purge(ctx, s.now().UTC().Add(-s.grace))
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Warn("otp sweep failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				s.logger.Debug("otp sweep", slog.Int64("removed", removed))
			}
		}
	}
}
