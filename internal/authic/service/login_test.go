package service

import (
	"context"
	"testing"
	"time"

	"github.com/jjxapp/authic/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newLoginService(t *testing.T, env *testEnv) *LoginService {
	t.Helper()

	keys, err := jwtx.NewEphemeralKeypair("test-1", "authic-test")
	require.NoError(t, err)

	return &LoginService{
		Store:    env.store,
		Clock:    env.clock,
		Throttle: env.throttle,
		Keys:     keys,
		Issuer:   "authic-test",
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	login := newLoginService(t, env)
	ctx := context.Background()

	account, err := env.accounts.Register(ctx, "login@example.com", "hunter2hunter2")
	require.NoError(t, err)

	token, err := login.Login(ctx, "login@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, "Bearer", token.TokenType)
	require.Equal(t, int(jwtx.DefaultAccessTokenTTL.Seconds()), token.ExpiresIn)

	claims, err := login.Keys.Verify(token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)
	require.Equal(t, "login@example.com", claims.Email)
	require.False(t, claims.EmailVerified)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	login := newLoginService(t, env)
	ctx := context.Background()

	_, err := env.accounts.Register(ctx, "creds@example.com", "hunter2hunter2")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := login.Login(ctx, "creds@example.com", "not-the-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable", func(t *testing.T) {
		_, err := login.Login(ctx, "ghost@example.com", "hunter2hunter2")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginLockout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	login := newLoginService(t, env)
	ctx := context.Background()

	_, err := env.accounts.Register(ctx, "bruteforce@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = login.Login(ctx, "bruteforce@example.com", "guess-one")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = login.Login(ctx, "bruteforce@example.com", "guess-two")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = login.Login(ctx, "bruteforce@example.com", "guess-three")
	require.ErrorIs(t, err, ErrTooManyAttempts)

	// The correct password is refused while the block holds.
	_, err = login.Login(ctx, "bruteforce@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, ErrTooManyAttempts)

	env.clock.Advance(DefaultCooldown + time.Second)

	_, err = login.Login(ctx, "bruteforce@example.com", "hunter2hunter2")
	require.NoError(t, err)
}

func TestLoginMarksVerifiedInClaims(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	login := newLoginService(t, env)
	ctx := context.Background()

	_, err := env.accounts.Register(ctx, "claims@example.com", "hunter2hunter2")
	require.NoError(t, err)
	code := env.mailer.lastCode(t)
	require.NoError(t, env.accounts.VerifyEmail(ctx, "claims@example.com", code))

	token, err := login.Login(ctx, "claims@example.com", "hunter2hunter2")
	require.NoError(t, err)

	claims, err := login.Keys.Verify(token.AccessToken)
	require.NoError(t, err)
	require.True(t, claims.EmailVerified)
}
