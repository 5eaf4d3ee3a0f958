package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jjxapp/authic/internal/authic/domain"
	"github.com/jjxapp/authic/internal/authic/store"
	"github.com/jjxapp/authic/pkg/clockx"
	"github.com/jjxapp/authic/pkg/cryptox"
	"github.com/jjxapp/authic/pkg/jwtx"
	"github.com/jjxapp/authic/pkg/slogx"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginService verifies passwords behind the attempt throttle and mints
// access tokens. Unknown emails and wrong passwords both come back as
// ErrInvalidCredentials; the caller never learns which.
type LoginService struct {
	Store    store.Store
	Clock    clockx.Clocker
	Throttle *ThrottleService
	Keys     *jwtx.Keypair

	Issuer   string
	TokenTTL time.Duration
}

func (s *LoginService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

// TokenResult is the successful outcome of a login.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
}

// Login checks the password for the account behind the email and returns a
// signed access token. Consecutive failures are counted per account; once the
// limit is hit the account is cooled down and even the correct password is
// refused until the block lapses.
func (s *LoginService) Login(ctx context.Context, email, password string) (TokenResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return TokenResult{}, ErrInvalidCredentials
	}

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenResult{}, ErrInvalidCredentials
		}
		return TokenResult{}, fmt.Errorf("failed to load account: %w", err)
	}

	if err := s.Throttle.Check(ctx, account.ID, domain.ScopeLogin); err != nil {
		return TokenResult{}, err
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			return TokenResult{}, fmt.Errorf("failed to verify password: %w", err)
		}
		if err := s.Throttle.RecordFailure(ctx, account.ID, domain.ScopeLogin); err != nil {
			if errors.Is(err, ErrTooManyAttempts) {
				return TokenResult{}, err
			}
			return TokenResult{}, fmt.Errorf("failed to record login failure: %w", err)
		}
		return TokenResult{}, ErrInvalidCredentials
	}

	if err := s.Throttle.RecordSuccess(ctx, account.ID, domain.ScopeLogin); err != nil {
		slogx.FromContext(ctx).Warn("failed to reset login throttle", "error", err)
	}

	ttl := s.tokenTTL()
	claims := jwtx.NewAccessClaims(account.ID, account.Email, account.IsVerified(), s.Issuer, ttl, s.Clock.Now())
	token, err := s.Keys.Sign(claims)
	if err != nil {
		return TokenResult{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return TokenResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}
