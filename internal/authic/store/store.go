package store

import (
	"context"
	"errors"
	"time"

	"github.com/jjxapp/authic/internal/authic/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to stop callers from accidentally nesting transactions.
type Store interface {
	Accounts() Accounts
	Challenges() Challenges
	Attempts() Attempts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and
	// rolling back otherwise. This is the recommended way to run
	// multi-step operations that must be atomic (e.g., supersede+insert
	// at issuance).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail returns an account by its (unique) email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// MarkVerified flips the account to verified and stamps verified_at.
	MarkVerified(ctx context.Context, accountID string, at time.Time) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error
}

type Challenges interface {
	// CreateChallenge writes a new pending challenge (code_hash is the
	// sha256 fingerprint of the code; the raw code is never stored).
	CreateChallenge(ctx context.Context, c domain.Challenge) error

	// GetActiveChallenge returns the non-consumed challenge for the
	// (subject, purpose) pair. At most one exists. Expired challenges are
	// still returned; expiry is the service's call to make.
	GetActiveChallenge(ctx context.Context, subjectID string, purpose domain.Purpose) (domain.Challenge, error)

	// ConsumeChallenge marks the challenge consumed iff it is not already.
	// This is the single compare-and-set that makes redemption single-use:
	// of two concurrent redeemers exactly one sees rows-affected == 1, the
	// other gets ErrNotFound.
	ConsumeChallenge(ctx context.Context, id string, at time.Time) error

	// DeleteActiveChallenge removes any non-consumed challenge for the
	// pair. Used at issuance to supersede; run in the same transaction as
	// the insert.
	DeleteActiveChallenge(ctx context.Context, subjectID string, purpose domain.Purpose) error

	// DeleteExpiredChallenges purges challenges whose window closed before
	// the cutoff. Housekeeping only; redemption never depends on it.
	DeleteExpiredChallenges(ctx context.Context, before time.Time) error
}

type Attempts interface {
	// GetAttempt returns the failure counter for the pair, or ErrNotFound.
	GetAttempt(ctx context.Context, subjectID string, scope domain.AttemptScope) (domain.Attempt, error)

	// RecordFailure atomically increments the consecutive-failure counter
	// (creating the row if needed) and returns the updated record.
	RecordFailure(ctx context.Context, subjectID string, scope domain.AttemptScope, at time.Time) (domain.Attempt, error)

	// SetBlockedUntil stamps the cool-down deadline on the pair.
	SetBlockedUntil(ctx context.Context, subjectID string, scope domain.AttemptScope, until time.Time) error

	// ResetAttempts clears the counter after a successful operation.
	ResetAttempts(ctx context.Context, subjectID string, scope domain.AttemptScope) error

	// DeleteStaleAttempts purges counters untouched since the cutoff.
	DeleteStaleAttempts(ctx context.Context, before time.Time) error
}
