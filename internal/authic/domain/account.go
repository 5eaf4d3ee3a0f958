package domain

import "time"

// AccountStatus tracks whether the account's email has been proven.
type AccountStatus string

const (
	AccountUnverified AccountStatus = "unverified"
	AccountVerified   AccountStatus = "verified"
)

// Account is the credential record challenges are issued against. The
// challenge engine references accounts but never mutates their credential;
// that stays an explicit follow-up by the account service.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Status       AccountStatus
	VerifiedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsVerified reports whether the account's email has been proven.
func (a Account) IsVerified() bool {
	return a.Status == AccountVerified
}
