package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jjxapp/authic/internal/authic/domain"
	"github.com/jjxapp/authic/internal/authic/store"
	"github.com/jjxapp/authic/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore("file:" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func seedAccount(t *testing.T, st *Store, email string) domain.Account {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "argon2:placeholder",
		Status:       domain.AccountUnverified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Accounts().CreateAccount(context.Background(), account))
	return account
}

func seedChallenge(t *testing.T, st *Store, subjectID string, purpose domain.Purpose) domain.Challenge {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	c := domain.Challenge{
		ID:        idx.New().String(),
		SubjectID: subjectID,
		Purpose:   purpose,
		CodeHash:  "fingerprint-" + idx.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, st.Challenges().CreateChallenge(context.Background(), c))
	return c
}

func TestAccountsRoundTrip(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, st, "acct@example.com")

	byID, err := st.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, account.Email, byID.Email)
	require.Equal(t, domain.AccountUnverified, byID.Status)
	require.Nil(t, byID.VerifiedAt)

	byEmail, err := st.Accounts().GetAccountByEmail(ctx, "acct@example.com")
	require.NoError(t, err)
	require.Equal(t, account.ID, byEmail.ID)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		dup := account
		dup.ID = idx.New().String()
		require.ErrorIs(t, st.Accounts().CreateAccount(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("mark verified", func(t *testing.T) {
		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, st.Accounts().MarkVerified(ctx, account.ID, at))

		got, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, domain.AccountVerified, got.Status)
		require.NotNil(t, got.VerifiedAt)
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		_, err := st.Accounts().GetAccountByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, st.Accounts().MarkVerified(ctx, "missing", time.Now()), store.ErrNotFound)
	})
}

func TestConsumeChallengeIsCompareAndSet(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, st, "cas@example.com")
	challenge := seedChallenge(t, st, account.ID, domain.PurposeEmailVerify)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.Challenges().ConsumeChallenge(ctx, challenge.ID, at))

	// The second consume finds no unconsumed row.
	err := st.Challenges().ConsumeChallenge(ctx, challenge.ID, at)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Consumed rows drop out of the active lookup.
	_, err = st.Challenges().GetActiveChallenge(ctx, account.ID, domain.PurposeEmailVerify)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestActiveChallengeUniquePerPair(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, st, "unique@example.com")
	first := seedChallenge(t, st, account.ID, domain.PurposeEmailVerify)

	// A second active row for the same pair violates the partial index.
	dup := first
	dup.ID = idx.New().String()
	require.ErrorIs(t, st.Challenges().CreateChallenge(ctx, dup), store.ErrAlreadyExists)

	// A different purpose is its own pair.
	other := seedChallenge(t, st, account.ID, domain.PurposePasswordReset)
	require.NotEqual(t, first.ID, other.ID)

	// Once consumed, the pair accepts a fresh active row.
	require.NoError(t, st.Challenges().ConsumeChallenge(ctx, first.ID, time.Now().UTC()))
	seedChallenge(t, st, account.ID, domain.PurposeEmailVerify)
}

func TestDeleteActiveChallengeSparesConsumed(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, st, "supersede@example.com")
	consumed := seedChallenge(t, st, account.ID, domain.PurposeEmailVerify)
	require.NoError(t, st.Challenges().ConsumeChallenge(ctx, consumed.ID, time.Now().UTC()))

	seedChallenge(t, st, account.ID, domain.PurposeEmailVerify)
	require.NoError(t, st.Challenges().DeleteActiveChallenge(ctx, account.ID, domain.PurposeEmailVerify))

	// Only the active row went away; the consumed one stays for audit.
	_, err := st.Challenges().GetActiveChallenge(ctx, account.ID, domain.PurposeEmailVerify)
	require.ErrorIs(t, err, store.ErrNotFound)

	var count int
	row := st.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM challenges WHERE subject_id = ?`, account.ID)
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)
}

func TestDeleteExpiredChallenges(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, st, "expired@example.com")
	challenge := seedChallenge(t, st, account.ID, domain.PurposeEmailVerify)

	// A cutoff before the expiry leaves the row alone.
	require.NoError(t, st.Challenges().DeleteExpiredChallenges(ctx, challenge.ExpiresAt.Add(-time.Minute)))
	_, err := st.Challenges().GetActiveChallenge(ctx, account.ID, domain.PurposeEmailVerify)
	require.NoError(t, err)

	require.NoError(t, st.Challenges().DeleteExpiredChallenges(ctx, challenge.ExpiresAt.Add(time.Minute)))
	_, err = st.Challenges().GetActiveChallenge(ctx, account.ID, domain.PurposeEmailVerify)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAttemptsUpsert(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)

	first, err := st.Attempts().RecordFailure(ctx, "subject-1", domain.ScopeLogin, now)
	require.NoError(t, err)
	require.Equal(t, 1, first.Failures)
	require.NotNil(t, first.LastFailure)
	require.Nil(t, first.BlockedUntil)

	second, err := st.Attempts().RecordFailure(ctx, "subject-1", domain.ScopeLogin, now.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, 2, second.Failures)

	t.Run("scopes counted separately", func(t *testing.T) {
		redeem, err := st.Attempts().RecordFailure(ctx, "subject-1", domain.ScopeRedeem, now)
		require.NoError(t, err)
		require.Equal(t, 1, redeem.Failures)
	})

	t.Run("blocked until round trips", func(t *testing.T) {
		until := now.Add(15 * time.Minute)
		require.NoError(t, st.Attempts().SetBlockedUntil(ctx, "subject-1", domain.ScopeLogin, until))

		got, err := st.Attempts().GetAttempt(ctx, "subject-1", domain.ScopeLogin)
		require.NoError(t, err)
		require.NotNil(t, got.BlockedUntil)
		require.True(t, got.BlockedAt(now))
		require.False(t, got.BlockedAt(until.Add(time.Second)))
	})

	t.Run("reset deletes the row", func(t *testing.T) {
		require.NoError(t, st.Attempts().ResetAttempts(ctx, "subject-1", domain.ScopeLogin))
		_, err := st.Attempts().GetAttempt(ctx, "subject-1", domain.ScopeLogin)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDeleteStaleAttempts(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-30 * 24 * time.Hour).Truncate(time.Second)
	recent := time.Now().UTC().Truncate(time.Second)

	_, err := st.Attempts().RecordFailure(ctx, "stale", domain.ScopeLogin, old)
	require.NoError(t, err)
	_, err = st.Attempts().RecordFailure(ctx, "fresh", domain.ScopeLogin, recent)
	require.NoError(t, err)

	require.NoError(t, st.Attempts().DeleteStaleAttempts(ctx, recent.Add(-7*24*time.Hour)))

	_, err = st.Attempts().GetAttempt(ctx, "stale", domain.ScopeLogin)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Attempts().GetAttempt(ctx, "fresh", domain.ScopeLogin)
	require.NoError(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, st, "tx@example.com")
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		c := domain.Challenge{
			ID:        idx.New().String(),
			SubjectID: account.ID,
			Purpose:   domain.PurposeEmailVerify,
			CodeHash:  "fingerprint",
			IssuedAt:  time.Now().UTC(),
			ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
		}
		if err := tx.Challenges().CreateChallenge(ctx, c); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The insert inside the failed transaction left no trace.
	_, err = st.Challenges().GetActiveChallenge(ctx, account.ID, domain.PurposeEmailVerify)
	require.ErrorIs(t, err, store.ErrNotFound)
}
