package repository

import (
	"context"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type accountRepository struct {
	db DBTX
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db DBTX) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (id, name, email, password_hash, role, wallet)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		bytesArg(account.Wallet),
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `
        SELECT id, name, email, password_hash, role, wallet, created_at, updated_at
        FROM accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
        SELECT id, name, email, password_hash, role, wallet, created_at, updated_at
        FROM accounts WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var (
		account domain.Account
		wallet  []byte
	)
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&wallet,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	if err := scanAddress(&account.Wallet, wallet); err != nil {
		return nil, err
	}
	return &account, nil
}
