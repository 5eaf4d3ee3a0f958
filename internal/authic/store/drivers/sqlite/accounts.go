package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jjxapp/authic/internal/authic/domain"
	"github.com/jjxapp/authic/internal/authic/store"
)

type accountsRepo struct {
	db dbtx
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.PasswordHash, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.scanAccount(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, status, verified_at, created_at, updated_at
		FROM accounts WHERE id = ?`, id))
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.scanAccount(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, status, verified_at, created_at, updated_at
		FROM accounts WHERE email = ?`, email))
}

func (r *accountsRepo) MarkVerified(ctx context.Context, accountID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET status = ?, verified_at = ?, updated_at = ?
		WHERE id = ?`,
		string(domain.AccountVerified), at, at, accountID,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		newHash, accountID,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *accountsRepo) scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a          domain.Account
		status     string
		verifiedAt sql.NullTime
	)

	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &status, &verifiedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.Status = domain.AccountStatus(status)
	a.VerifiedAt = mapNullTimePtr(verifiedAt)
	return a, nil
}

func requireRowChanged(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
