package sqlite

import (
	"context"

	"github.com/spec-kit/identity-registry/internal/domain"
)

type accountRepository struct {
	db dbtx
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO accounts (id, name, email, password_hash, role, wallet, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		string(account.Role),
		account.Wallet,
		ts,
		ts,
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	account.CreatedAt, account.UpdatedAt = ts, ts
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `
        SELECT id, name, email, password_hash, role, wallet, created_at, updated_at
        FROM accounts WHERE id = ?`, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `
        SELECT id, name, email, password_hash, role, wallet, created_at, updated_at
        FROM accounts WHERE email = ?`, email)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var (
		account domain.Account
		role    string
	)
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&role,
		&account.Wallet,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	account.Role = domain.Role(role)
	return &account, nil
}
