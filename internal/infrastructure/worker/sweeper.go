package worker

import (
	"context"
	"log/slog"
	"time"
)

// ExpirySweep cancels pending investments once their reservation
// window lapses, handing reserved shares back to the property.
type ExpirySweep interface {
	ExpireInvestments(ctx context.Context, now time.Time) (int, error)
}

// Sweeper periodically runs the reservation expiry sweep.
type Sweeper struct {
	sweep    ExpirySweep
	logger   *slog.Logger
	interval time.Duration
}

// Config for Sweeper.
type Config struct {
	Sweep    ExpirySweep
	Logger   *slog.Logger
	Interval time.Duration
}

// NewSweeper creates a new Sweeper.
func NewSweeper(cfg Config) *Sweeper {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Sweeper{
		sweep:    cfg.Sweep,
		logger:   cfg.Logger,
		interval: cfg.Interval,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("expiry sweeper started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.runOnce(ctx); err != nil {
		s.logger.Error("error running expiry sweep on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runOnce(ctx); err != nil {
				s.logger.Error("error running expiry sweep", slog.String("error", err.Error()))
			}
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) error {
	expired, err := s.sweep.ExpireInvestments(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	if expired > 0 {
		s.logger.Info("expired pending investments", slog.Int("count", expired))
	}

	return nil
}
