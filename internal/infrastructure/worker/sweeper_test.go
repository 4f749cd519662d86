package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type stubSweep struct {
	calls   atomic.Int32
	expired int
	err     error
}

func (s *stubSweep) ExpireInvestments(_ context.Context, _ time.Time) (int, error) {
	s.calls.Add(1)
	return s.expired, s.err
}

func newTestSweeper(sweep ExpirySweep, interval time.Duration) *Sweeper {
	return NewSweeper(Config{
		Sweep:    sweep,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Interval: interval,
	})
}

func TestRunOnceSweeps(t *testing.T) {
	sweep := &stubSweep{expired: 3}
	s := newTestSweeper(sweep, time.Minute)

	if err := s.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce failed: %v", err)
	}
	if sweep.calls.Load() != 1 {
		t.Fatalf("sweep calls = %d, want 1", sweep.calls.Load())
	}
}

func TestRunOncePropagatesError(t *testing.T) {
	sweep := &stubSweep{err: errors.New("db down")}
	s := newTestSweeper(sweep, time.Minute)

	if err := s.runOnce(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	sweep := &stubSweep{}
	s := newTestSweeper(sweep, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}

	// Runs once at start, then on each tick.
	if sweep.calls.Load() < 2 {
		t.Fatalf("sweep calls = %d, want at least 2", sweep.calls.Load())
	}
}
