package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jjxapp/authic/internal/authic/domain"
)

type attemptsRepo struct {
	db dbtx
}

func (r *attemptsRepo) GetAttempt(
	ctx context.Context,
	subjectID string,
	scope domain.AttemptScope,
) (domain.Attempt, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT subject_id, scope, failures, last_failure_at, blocked_until, updated_at
		FROM attempts
		WHERE subject_id = ? AND scope = ?`,
		subjectID, string(scope),
	)
	return scanAttempt(row)
}

func (r *attemptsRepo) RecordFailure(
	ctx context.Context,
	subjectID string,
	scope domain.AttemptScope,
	at time.Time,
) (domain.Attempt, error) {
	// Upsert keeps the increment atomic under concurrent failures.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attempts (subject_id, scope, failures, last_failure_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(subject_id, scope) DO UPDATE SET
			failures = failures + 1,
			last_failure_at = excluded.last_failure_at,
			updated_at = excluded.updated_at`,
		subjectID, string(scope), at, at,
	)
	if err != nil {
		return domain.Attempt{}, err
	}
	return r.GetAttempt(ctx, subjectID, scope)
}

func (r *attemptsRepo) SetBlockedUntil(
	ctx context.Context,
	subjectID string,
	scope domain.AttemptScope,
	until time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attempts SET blocked_until = ?, updated_at = ?
		WHERE subject_id = ? AND scope = ?`,
		until, until, subjectID, string(scope),
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *attemptsRepo) ResetAttempts(
	ctx context.Context,
	subjectID string,
	scope domain.AttemptScope,
) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM attempts WHERE subject_id = ? AND scope = ?`,
		subjectID, string(scope),
	)
	return err
}

func (r *attemptsRepo) DeleteStaleAttempts(ctx context.Context, before time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM attempts WHERE updated_at < ?`, before)
	return err
}

func scanAttempt(row *sql.Row) (domain.Attempt, error) {
	var (
		a            domain.Attempt
		scope        string
		lastFailure  sql.NullTime
		blockedUntil sql.NullTime
	)
	err := row.Scan(&a.SubjectID, &scope, &a.Failures, &lastFailure, &blockedUntil, &a.UpdatedAt)
	if err != nil {
		return domain.Attempt{}, mapNotFound(err)
	}
	a.Scope = domain.AttemptScope(scope)
	a.LastFailure = mapNullTimePtr(lastFailure)
	a.BlockedUntil = mapNullTimePtr(blockedUntil)
	return a, nil
}
