package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-registry/internal/api/dto"
	"github.com/spec-kit/identity-registry/internal/auth"
	"github.com/spec-kit/identity-registry/internal/service"
	apperrors "github.com/spec-kit/identity-registry/pkg/util/errorutil"
)

// AccountsHandler exposes auth endpoints for accounts.
type AccountsHandler struct {
	auth *service.AuthService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(authService *service.AuthService) *AccountsHandler {
	return &AccountsHandler{auth: authService}
}

// Register handles POST /auth/accounts/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.AccountRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	account, token, exp, err := h.auth.RegisterAccount(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return data(c, http.StatusCreated, fiber.Map{
		"account": dto.NewAccountResponse(account),
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Login handles POST /auth/accounts/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.AccountLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	account, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return data(c, http.StatusOK, fiber.Map{
		"account": dto.NewAccountResponse(account),
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Me handles GET /auth/accounts/me.
func (h *AccountsHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return data(c, http.StatusOK, dto.NewAccountResponse(principal.Account))
}
