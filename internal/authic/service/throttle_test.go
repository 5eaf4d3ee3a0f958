package service

import (
	"context"
	"testing"
	"time"

	"github.com/jjxapp/authic/internal/authic/domain"
	"github.com/stretchr/testify/require"
)

func TestThrottleAllowsUnknownPair(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.throttle.Check(ctx, "subject-a", domain.ScopeRedeem))
}

func TestThrottleBlocksAfterLimit(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.throttle.RecordFailure(ctx, "subject-b", domain.ScopeLogin))
	require.NoError(t, env.throttle.RecordFailure(ctx, "subject-b", domain.ScopeLogin))
	require.NoError(t, env.throttle.Check(ctx, "subject-b", domain.ScopeLogin))

	err := env.throttle.RecordFailure(ctx, "subject-b", domain.ScopeLogin)
	require.ErrorIs(t, err, ErrTooManyAttempts)

	require.ErrorIs(t, env.throttle.Check(ctx, "subject-b", domain.ScopeLogin), ErrTooManyAttempts)
}

func TestThrottleScopesAreIndependent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	for range DefaultMaxAttempts {
		_ = env.throttle.RecordFailure(ctx, "subject-c", domain.ScopeLogin)
	}
	require.ErrorIs(t, env.throttle.Check(ctx, "subject-c", domain.ScopeLogin), ErrTooManyAttempts)

	// Redemption failures for the same subject are counted separately.
	require.NoError(t, env.throttle.Check(ctx, "subject-c", domain.ScopeRedeem))
}

func TestThrottleCooldownLapses(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	for range DefaultMaxAttempts {
		_ = env.throttle.RecordFailure(ctx, "subject-d", domain.ScopeRedeem)
	}
	require.ErrorIs(t, env.throttle.Check(ctx, "subject-d", domain.ScopeRedeem), ErrTooManyAttempts)

	env.clock.Advance(DefaultCooldown - time.Second)
	require.ErrorIs(t, env.throttle.Check(ctx, "subject-d", domain.ScopeRedeem), ErrTooManyAttempts)

	env.clock.Advance(2 * time.Second)
	require.NoError(t, env.throttle.Check(ctx, "subject-d", domain.ScopeRedeem))
}

func TestThrottleSuccessResets(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.throttle.RecordFailure(ctx, "subject-e", domain.ScopeLogin))
	require.NoError(t, env.throttle.RecordFailure(ctx, "subject-e", domain.ScopeLogin))
	require.NoError(t, env.throttle.RecordSuccess(ctx, "subject-e", domain.ScopeLogin))

	// The counter starts over after a success.
	require.NoError(t, env.throttle.RecordFailure(ctx, "subject-e", domain.ScopeLogin))
	require.NoError(t, env.throttle.RecordFailure(ctx, "subject-e", domain.ScopeLogin))
	require.NoError(t, env.throttle.Check(ctx, "subject-e", domain.ScopeLogin))
}
