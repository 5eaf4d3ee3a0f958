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
	"github.com/jjxapp/authic/pkg/idx"
	"github.com/jjxapp/authic/pkg/mailx"
	"github.com/jjxapp/authic/pkg/slogx"
)

const (
	// DefaultChallengeTTL is the validity window of an issued code.
	DefaultChallengeTTL = 10 * time.Minute
	// DefaultResendCooldown is the minimum gap between issuances for the
	// same (subject, purpose) pair.
	DefaultResendCooldown = 60 * time.Second

	// codeRegenerateLimit caps the regenerate-on-collision loop. With a
	// six-digit numeric policy a collision with the superseded code has
	// probability 1e-6 per draw, so this bound is never reached in practice.
	codeRegenerateLimit = 10
)

var (
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrInvalidPurpose    = errors.New("invalid challenge purpose")
	ErrDeliveryFailed    = errors.New("code delivery failed")
	ErrResendCooldown    = errors.New("code recently sent, wait before resending")
	ErrNoActiveChallenge = errors.New("no active challenge")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrCodeMismatch      = errors.New("code mismatch")
)

// ChallengeService issues and redeems one-time codes. Issuance persists only
// the code's fingerprint and hands the raw code to the Mailer; redemption is
// a single compare-and-set so each code is usable at most once even under
// concurrent submissions.
type ChallengeService struct {
	Store    store.Store
	Clock    clockx.Clocker
	Mailer   mailx.Mailer
	Throttle *ThrottleService

	// Policy controls code shape and comparison; zero value falls back to
	// cryptox.DefaultCodePolicy.
	Policy cryptox.CodePolicy

	// TTL and ResendCooldown fall back to the defaults when zero.
	TTL            time.Duration
	ResendCooldown time.Duration
}

func (s *ChallengeService) policy() cryptox.CodePolicy {
	if s.Policy.Length == 0 {
		return cryptox.DefaultCodePolicy
	}
	return s.Policy
}

func (s *ChallengeService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultChallengeTTL
}

func (s *ChallengeService) resendCooldown() time.Duration {
	if s.ResendCooldown > 0 {
		return s.ResendCooldown
	}
	return DefaultResendCooldown
}

// Issue generates a fresh one-time code for the (subject, purpose) pair,
// supersedes any prior active challenge in the same transaction, and delivers
// the code by email. The raw code is never returned; callers get only the
// validity window.
//
// A persisted challenge whose delivery failed is NOT rolled back; the caller
// can resend once the cool-down passes.
func (s *ChallengeService) Issue(ctx context.Context, subjectID string, purpose domain.Purpose) (domain.Issuance, error) {
	if !purpose.Valid() {
		return domain.Issuance{}, ErrInvalidPurpose
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Issuance{}, ErrSubjectNotFound
		}
		return domain.Issuance{}, fmt.Errorf("failed to load subject: %w", err)
	}

	now := s.Clock.Now()

	// The prior active challenge matters twice: its age drives the resend
	// cool-down, and its fingerprint must not be reissued while both codes
	// could be in flight.
	var priorHash string
	prior, err := s.Store.Challenges().GetActiveChallenge(ctx, subjectID, purpose)
	switch {
	case err == nil:
		if now.Sub(prior.IssuedAt) < s.resendCooldown() {
			return domain.Issuance{}, ErrResendCooldown
		}
		priorHash = prior.CodeHash
	case errors.Is(err, store.ErrNotFound):
		// First issuance for the pair.
	default:
		return domain.Issuance{}, fmt.Errorf("failed to load prior challenge: %w", err)
	}

	code, codeHash, err := s.generateCode(priorHash)
	if err != nil {
		return domain.Issuance{}, err
	}

	challenge := domain.Challenge{
		ID:        idx.New().String(),
		SubjectID: subjectID,
		Purpose:   purpose,
		CodeHash:  codeHash,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl()),
	}

	// Supersede and insert atomically so the pair never has two active
	// challenges, and never zero mid-issuance.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Challenges().DeleteActiveChallenge(ctx, subjectID, purpose); err != nil {
			return fmt.Errorf("failed to supersede prior challenge: %w", err)
		}
		if err := tx.Challenges().CreateChallenge(ctx, challenge); err != nil {
			return fmt.Errorf("failed to persist challenge: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Issuance{}, err
	}

	msg := codeEmail(purpose, account.Email, code, s.ttl())
	if err := s.Mailer.Send(ctx, msg); err != nil {
		slogx.FromContext(ctx).Warn("code delivery failed",
			"purpose", string(purpose),
			"error", err,
		)
		return domain.Issuance{}, ErrDeliveryFailed
	}

	return domain.Issuance{IssuedAt: challenge.IssuedAt, ExpiresAt: challenge.ExpiresAt}, nil
}

// generateCode draws a code under the policy, regenerating if its fingerprint
// collides with the superseded challenge's. Two overlapping windows therefore
// never share a code.
func (s *ChallengeService) generateCode(priorHash string) (code, hash string, err error) {
	policy := s.policy()
	for range codeRegenerateLimit {
		code, err = cryptox.GenerateCode(policy)
		if err != nil {
			return "", "", fmt.Errorf("failed to generate code: %w", err)
		}
		hash = cryptox.FingerprintCode(policy, code)
		if hash != priorHash {
			return code, hash, nil
		}
	}
	return "", "", errors.New("failed to generate a distinct code")
}

// Redeem validates a supplied code against the pair's active challenge and
// consumes it. The checks run in a fixed order so callers learn as little as
// possible: throttle, existence, expiry, then the constant-time code match.
// An expired challenge never has its code compared.
func (s *ChallengeService) Redeem(ctx context.Context, subjectID string, purpose domain.Purpose, code string) (domain.Redemption, error) {
	if !purpose.Valid() {
		return domain.Redemption{}, ErrInvalidPurpose
	}

	if err := s.Throttle.Check(ctx, subjectID, domain.ScopeRedeem); err != nil {
		return domain.Redemption{}, err
	}

	challenge, err := s.Store.Challenges().GetActiveChallenge(ctx, subjectID, purpose)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Redemption{}, ErrNoActiveChallenge
		}
		return domain.Redemption{}, fmt.Errorf("failed to load challenge: %w", err)
	}

	now := s.Clock.Now()
	if challenge.ExpiredAt(now) {
		return domain.Redemption{}, ErrChallengeExpired
	}

	if !cryptox.MatchCode(s.policy(), challenge.CodeHash, code) {
		if err := s.Throttle.RecordFailure(ctx, subjectID, domain.ScopeRedeem); err != nil {
			if errors.Is(err, ErrTooManyAttempts) {
				return domain.Redemption{}, err
			}
			return domain.Redemption{}, fmt.Errorf("failed to record redemption failure: %w", err)
		}
		return domain.Redemption{}, ErrCodeMismatch
	}

	// The conditional update is the single-use gate: of N concurrent
	// correct-code redeemers exactly one flips consumed_at, the rest see
	// no active challenge.
	if err := s.Store.Challenges().ConsumeChallenge(ctx, challenge.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Redemption{}, ErrNoActiveChallenge
		}
		return domain.Redemption{}, fmt.Errorf("failed to consume challenge: %w", err)
	}

	if err := s.Throttle.RecordSuccess(ctx, subjectID, domain.ScopeRedeem); err != nil {
		// The redemption already stands; a failed counter reset only
		// inconveniences a subject who keeps failing afterwards.
		slogx.FromContext(ctx).Warn("failed to reset redemption throttle", "error", err)
	}

	return domain.Redemption{SubjectID: subjectID, Purpose: purpose}, nil
}
