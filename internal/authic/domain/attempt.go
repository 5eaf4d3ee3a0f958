package domain

import "time"

// AttemptScope separates the failure counters guarding different checks.
type AttemptScope string

const (
	// ScopeLogin guards the password check.
	ScopeLogin AttemptScope = "login"
	// ScopeRedeem guards one-time code redemption.
	ScopeRedeem AttemptScope = "redeem"
)

// Attempt is the persisted consecutive-failure counter for a
// (SubjectID, Scope) pair. Keeping it in the shared store rather than process
// memory means the guard survives restarts and is shared across instances.
type Attempt struct {
	SubjectID    string
	Scope        AttemptScope
	Failures     int
	LastFailure  *time.Time
	BlockedUntil *time.Time
	UpdatedAt    time.Time
}

// BlockedAt reports whether the pair is locked out at the given instant.
func (a Attempt) BlockedAt(now time.Time) bool {
	return a.BlockedUntil != nil && now.Before(*a.BlockedUntil)
}
