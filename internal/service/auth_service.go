package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-registry/internal/auth"
	"github.com/spec-kit/identity-registry/internal/config"
	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/repository"
)

const minPasswordLength = 8

// AuthService coordinates registration and login flows.
type AuthService struct {
	accounts   repository.AccountRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, accounts repository.AccountRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		accounts:   accounts,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     nopIfNil(logger),
	}
}

// RegisterAccount creates a holder account and signs its first token.
func (s *AuthService) RegisterAccount(ctx context.Context, name, email, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.createAccount(ctx, name, email, password, domain.RoleHolder)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.tokenMgr.GenerateToken(account)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// Login authenticates an account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", time.Time{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := auth.VerifyPassword(account.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, domain.ErrInvalidCredentials
	}
	token, exp, err := s.tokenMgr.GenerateToken(account)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// SeedAdmin creates the configured admin account when it does not exist yet.
// Missing credentials disable seeding.
func (s *AuthService) SeedAdmin(ctx context.Context, name, email, password string) (*domain.Account, bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, false, nil
	}
	existing, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		if !existing.IsAdmin() {
			s.logger.Warn("admin seed email belongs to a holder account", zap.String("email", existing.Email))
		}
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	account, err := s.createAccount(ctx, name, email, password, domain.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("seeded admin account", zap.String("account_id", account.ID))
	return account, true, nil
}

// GetAccount loads an account by id.
func (s *AuthService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) createAccount(ctx context.Context, name, email, password string, role domain.Role) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	account := &domain.Account{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Wallet:       domain.WalletAddress(id),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
