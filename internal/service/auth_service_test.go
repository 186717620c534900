package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/identity-registry/internal/config"
	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/service"
	"github.com/spec-kit/identity-registry/internal/testutil"
)

var authConfig = config.AuthConfig{
	JWTSecret:             "test-secret",
	AccessTokenTTLMinutes: 5,
	BcryptCost:            bcrypt.MinCost,
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewSQLiteStore(t)
	svc := service.NewAuthService(authConfig, store.Accounts(), nil)

	account, token, exp, err := svc.RegisterAccount(ctx, " Alice ", " Alice@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Alice", account.Name)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, domain.RoleHolder, account.Role)
	assert.Equal(t, domain.WalletAddress(account.ID), account.Wallet)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, account.Wallet, claims.Wallet)

	logged, _, _, err := svc.Login(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, account.ID, logged.ID)

	_, _, _, err = svc.Login(ctx, "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, _, err = svc.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, _, err = svc.RegisterAccount(ctx, "Other", "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := svc.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, got.Email)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAuthService(authConfig, testutil.NewSQLiteStore(t).Accounts(), nil)

	tests := []struct {
		name, email, password string
	}{
		{"", "a@example.com", "long enough"},
		{"Alice", "not-an-email", "long enough"},
		{"Alice", "a@example.com", "short"},
	}
	for _, tt := range tests {
		_, _, _, err := svc.RegisterAccount(ctx, tt.name, tt.email, tt.password)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, tt)
	}
}

func TestAuthService_SeedAdmin(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAuthService(authConfig, testutil.NewSQLiteStore(t).Accounts(), nil)

	account, created, err := svc.SeedAdmin(ctx, "Admin", "", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, account)

	account, created, err = svc.SeedAdmin(ctx, "Admin", "admin@example.com", "admin-password")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, account.IsAdmin())

	again, created, err := svc.SeedAdmin(ctx, "Admin", "admin@example.com", "admin-password")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, account.ID, again.ID)

	_, _, _, err = svc.Login(ctx, "admin@example.com", "admin-password")
	assert.NoError(t, err)
}

func TestActorFromAccount(t *testing.T) {
	account := &domain.Account{ID: "id", Role: domain.RoleAdmin, Wallet: domain.WalletAddress("id")}
	actor := service.ActorFromAccount(account)

	assert.Equal(t, "id", actor.AccountID)
	assert.Equal(t, account.Wallet, actor.Wallet)
	assert.True(t, actor.IsAdmin())
	assert.False(t, service.Actor{Role: domain.RoleHolder}.IsAdmin())
}
