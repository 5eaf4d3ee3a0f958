package domain

import "time"

// Purpose is the action a redeemed challenge authorizes. A code issued for
// one purpose can never be redeemed for another.
type Purpose string

const (
	PurposeEmailVerify   Purpose = "email_verify"
	PurposePasswordReset Purpose = "password_reset"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	return p == PurposeEmailVerify || p == PurposePasswordReset
}

// Challenge is a pending one-time code with its validity window. Only the
// code's fingerprint is stored; the raw code exists solely in the delivery
// email. At most one non-consumed, non-expired challenge exists per
// (SubjectID, Purpose) pair.
type Challenge struct {
	ID         string
	SubjectID  string
	Purpose    Purpose
	CodeHash   string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// Consumed reports whether the challenge has already been redeemed.
func (c Challenge) Consumed() bool {
	return c.ConsumedAt != nil
}

// ExpiredAt reports whether the challenge's window has passed at the given
// instant. Expiry is evaluated lazily at redemption; there is no eager sweep
// on the redemption path.
func (c Challenge) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Issuance is the metadata returned to callers after a challenge is issued.
// The code itself is never returned; it travels out-of-band.
type Issuance struct {
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Redemption directs the caller's follow-up after a successful redemption:
// mark the account verified, or permit the password-change step.
type Redemption struct {
	SubjectID string
	Purpose   Purpose
}
