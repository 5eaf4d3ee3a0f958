package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jjxapp/authic/internal/authic/domain"
)

type challengesRepo struct {
	db dbtx
}

func (r *challengesRepo) CreateChallenge(ctx context.Context, c domain.Challenge) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO challenges (id, subject_id, purpose, code_hash, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.SubjectID, string(c.Purpose), c.CodeHash, c.IssuedAt, c.ExpiresAt,
	)
	return mapConflict(err)
}

func (r *challengesRepo) GetActiveChallenge(
	ctx context.Context,
	subjectID string,
	purpose domain.Purpose,
) (domain.Challenge, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, subject_id, purpose, code_hash, issued_at, expires_at, consumed_at
		FROM challenges
		WHERE subject_id = ? AND purpose = ? AND consumed_at IS NULL`,
		subjectID, string(purpose),
	)

	var (
		c          domain.Challenge
		pp         string
		consumedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.SubjectID, &pp, &c.CodeHash, &c.IssuedAt, &c.ExpiresAt, &consumedAt)
	if err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}

	c.Purpose = domain.Purpose(pp)
	c.ConsumedAt = mapNullTimePtr(consumedAt)
	return c, nil
}

// ConsumeChallenge is the compare-and-set at the heart of single-use
// redemption: the consumed_at IS NULL predicate makes two concurrent
// redeemers resolve to exactly one success.
func (r *challengesRepo) ConsumeChallenge(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE challenges SET consumed_at = ?
		WHERE id = ? AND consumed_at IS NULL`,
		at, id,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *challengesRepo) DeleteActiveChallenge(
	ctx context.Context,
	subjectID string,
	purpose domain.Purpose,
) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM challenges
		WHERE subject_id = ? AND purpose = ? AND consumed_at IS NULL`,
		subjectID, string(purpose),
	)
	return err
}

func (r *challengesRepo) DeleteExpiredChallenges(ctx context.Context, before time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM challenges WHERE expires_at < ?`, before)
	return err
}
