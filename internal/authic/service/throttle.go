package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jjxapp/authic/internal/authic/domain"
	"github.com/jjxapp/authic/internal/authic/store"
	"github.com/jjxapp/authic/pkg/clockx"
)

const (
	// DefaultMaxAttempts is the number of consecutive failures tolerated
	// before a (subject, scope) pair is cooled down.
	DefaultMaxAttempts = 3
	// DefaultCooldown is how long a pair stays blocked after hitting the
	// failure limit.
	DefaultCooldown = 15 * time.Minute
)

var ErrTooManyAttempts = errors.New("too many attempts")

// ThrottleService guards credential checks with persisted per-(subject, scope)
// consecutive-failure counters. The counters live in the store, not process
// memory, so the guard survives restarts and is shared across instances.
type ThrottleService struct {
	Store store.Store
	Clock clockx.Clocker

	// MaxAttempts and Cooldown fall back to the defaults when zero.
	MaxAttempts int
	Cooldown    time.Duration
}

func (s *ThrottleService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultMaxAttempts
}

func (s *ThrottleService) cooldown() time.Duration {
	if s.Cooldown > 0 {
		return s.Cooldown
	}
	return DefaultCooldown
}

// Check returns ErrTooManyAttempts when the pair is currently blocked. It is
// called BEFORE the guarded credential check, so a blocked subject never gets
// its code or password evaluated at all.
func (s *ThrottleService) Check(ctx context.Context, subjectID string, scope domain.AttemptScope) error {
	attempt, err := s.Store.Attempts().GetAttempt(ctx, subjectID, scope)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load attempt counter: %w", err)
	}

	now := s.Clock.Now()
	if attempt.BlockedAt(now) {
		return ErrTooManyAttempts
	}

	// A counter at the limit whose cool-down has lapsed no longer blocks;
	// the row is cleared on the next success or by housekeeping.
	return nil
}

// RecordFailure increments the pair's consecutive-failure counter and starts
// the cool-down once the limit is reached. It returns ErrTooManyAttempts when
// this failure tripped the limit so callers can surface the block immediately.
func (s *ThrottleService) RecordFailure(ctx context.Context, subjectID string, scope domain.AttemptScope) error {
	now := s.Clock.Now()

	attempt, err := s.Store.Attempts().RecordFailure(ctx, subjectID, scope, now)
	if err != nil {
		return fmt.Errorf("failed to record attempt failure: %w", err)
	}

	if attempt.Failures >= s.maxAttempts() && !attempt.BlockedAt(now) {
		until := now.Add(s.cooldown())
		if err := s.Store.Attempts().SetBlockedUntil(ctx, subjectID, scope, until); err != nil {
			return fmt.Errorf("failed to start cool-down: %w", err)
		}
		return ErrTooManyAttempts
	}

	return nil
}

// RecordSuccess clears the pair's counter after a successful check.
func (s *ThrottleService) RecordSuccess(ctx context.Context, subjectID string, scope domain.AttemptScope) error {
	if err := s.Store.Attempts().ResetAttempts(ctx, subjectID, scope); err != nil {
		return fmt.Errorf("failed to reset attempt counter: %w", err)
	}
	return nil
}
