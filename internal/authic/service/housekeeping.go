package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jjxapp/authic/internal/authic/store"
	"github.com/jjxapp/authic/pkg/clockx"
)

const (
	// Expired challenges are kept around for a while before purging; lazy
	// evaluation at redemption already makes them unusable, so retention is
	// purely an audit convenience.
	defaultChallengeRetention = 24 * time.Hour
	// Attempt counters untouched this long are dead weight.
	defaultAttemptRetention = 7 * 24 * time.Hour
)

// HousekeepingService periodically purges expired challenges and stale
// attempt counters to prevent unbounded table growth. Correctness never
// depends on it; expiry and throttling are evaluated on the request path.
type HousekeepingService struct {
	Store    store.Store
	Clock    clockx.Clocker
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, clock clockx.Clocker, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Clock:    clock,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to shut it
// down gracefully.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the background worker, blocking until any in-progress
// cleanup finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup purges expired challenges and stale attempt counters. Each
// deletion is independent; a failure in one does not stop the others.
func (s *HousekeepingService) Cleanup() {
	ctx := context.Background()
	now := s.Clock.Now()

	if err := s.Store.Challenges().DeleteExpiredChallenges(ctx, now.Add(-defaultChallengeRetention)); err != nil {
		s.Logger.Error("failed to delete expired challenges", "error", err)
	} else {
		s.Logger.Debug("deleted expired challenges")
	}

	if err := s.Store.Attempts().DeleteStaleAttempts(ctx, now.Add(-defaultAttemptRetention)); err != nil {
		s.Logger.Error("failed to delete stale attempt counters", "error", err)
	} else {
		s.Logger.Debug("deleted stale attempt counters")
	}
}
