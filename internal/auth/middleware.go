package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/repository"
	apperrors "github.com/spec-kit/identity-registry/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Account *domain.Account
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	accounts repository.AccountRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, accounts repository.AccountRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	account, err := m.accounts.GetByID(c.UserContext(), claims.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperrors.NewUnauthorized("account not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Account: account})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.Account != nil
}
