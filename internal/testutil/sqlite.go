// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/persistence"
	"github.com/spec-kit/identity-registry/internal/repository"
	"github.com/spec-kit/identity-registry/internal/repository/sqlite"
)

// NewSQLiteStore returns a store over a private in-memory database that is
// closed when the test ends.
func NewSQLiteStore(t testing.TB) *sqlite.Store {
	t.Helper()

	ctx := context.Background()
	db, err := persistence.OpenSQLite(ctx, persistence.MemorySQLitePath, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store, err := sqlite.NewStore(ctx, db)
	if err != nil {
		_ = db.Close()
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// CreateAccount persists an account with the given role. The password hash is
// a placeholder; use the auth service when a login is needed.
func CreateAccount(t testing.TB, repos repository.Repositories, role domain.Role) *domain.Account {
	t.Helper()

	id := uuid.NewString()
	account := &domain.Account{
		ID:           id,
		Name:         "account " + id[:8],
		Email:        id + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Wallet:       domain.WalletAddress(id),
	}
	if err := repos.Accounts().Create(context.Background(), account); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}
