package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jjxapp/authic/internal/authic/domain"
	"github.com/jjxapp/authic/internal/authic/store"
	"github.com/jjxapp/authic/pkg/clockx"
	"github.com/jjxapp/authic/pkg/cryptox"
	"github.com/jjxapp/authic/pkg/idx"
	"github.com/jjxapp/authic/pkg/slogx"
)

const minPasswordLength = 8

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPassword = errors.New("password does not meet requirements")
)

// AccountService owns the account lifecycle and the credential follow-ups a
// redemption authorizes. The challenge engine never touches the credential
// itself; marking verified and swapping the password hash both happen here,
// keyed off a Redemption.
type AccountService struct {
	Store      store.Store
	Clock      clockx.Clocker
	Challenges *ChallengeService
	Throttle   *ThrottleService
}

// Register creates an unverified account and issues its email-verification
// challenge. A delivery failure does not fail registration; the resend path
// covers it once the cool-down passes.
func (s *AccountService) Register(ctx context.Context, email, password string) (domain.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Account{}, err
	}
	if len(password) < minPasswordLength {
		return domain.Account{}, ErrInvalidPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Clock.Now()
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Status:       domain.AccountUnverified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrEmailTaken
		}
		return domain.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	if _, err := s.Challenges.Issue(ctx, account.ID, domain.PurposeEmailVerify); err != nil {
		// The account exists either way; surface delivery trouble in the
		// logs and let the subject resend.
		slogx.FromContext(ctx).Warn("failed to issue verification challenge",
			"error", err,
		)
	}

	return account, nil
}

// VerifyEmail redeems the subject's email_verify challenge and marks the
// account verified. Unknown emails are indistinguishable from a missing
// challenge.
func (s *AccountService) VerifyEmail(ctx context.Context, email, code string) error {
	account, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return err
	}

	redemption, err := s.Challenges.Redeem(ctx, account.ID, domain.PurposeEmailVerify, code)
	if err != nil {
		return err
	}

	if err := s.Store.Accounts().MarkVerified(ctx, redemption.SubjectID, s.Clock.Now()); err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}

	return nil
}

// ResendCode supersedes the pair's active challenge with a fresh one and
// re-delivers it. Unknown emails and already-verified accounts report
// success without issuing anything, so the endpoint leaks no account state.
func (s *AccountService) ResendCode(ctx context.Context, email string, purpose domain.Purpose) error {
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}

	account, err := s.lookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNoActiveChallenge) {
			return nil
		}
		return err
	}
	if purpose == domain.PurposeEmailVerify && account.IsVerified() {
		return nil
	}

	_, err = s.Challenges.Issue(ctx, account.ID, purpose)
	return err
}

// ForgotPassword issues a password_reset challenge for the account behind
// the email. Unknown emails report success so the endpoint cannot be used to
// enumerate accounts.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.lookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNoActiveChallenge) {
			return nil
		}
		return err
	}

	_, err = s.Challenges.Issue(ctx, account.ID, domain.PurposePasswordReset)
	return err
}

// ResetPassword redeems the subject's password_reset challenge and swaps the
// credential hash. A successful reset also clears any login lockout so the
// subject can sign in with the new password immediately.
func (s *AccountService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrInvalidPassword
	}

	account, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return err
	}

	redemption, err := s.Challenges.Redeem(ctx, account.ID, domain.PurposePasswordReset, code)
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdatePasswordHash(ctx, redemption.SubjectID, hash); err != nil {
			return fmt.Errorf("failed to update password hash: %w", err)
		}
		if err := tx.Attempts().ResetAttempts(ctx, redemption.SubjectID, domain.ScopeLogin); err != nil {
			return fmt.Errorf("failed to reset login attempts: %w", err)
		}
		return nil
	})
}

// lookupByEmail resolves an email to its account, folding unknown emails into
// ErrNoActiveChallenge so callers cannot probe for registered addresses.
func (s *AccountService) lookupByEmail(ctx context.Context, email string) (domain.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrNoActiveChallenge
		}
		return domain.Account{}, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
