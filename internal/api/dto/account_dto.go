package dto

import (
	"time"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// AccountRegisterRequest payload for new holder accounts.
type AccountRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountLoginRequest payload for login.
type AccountLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Role   domain.Role    `json:"role"`
	Wallet domain.Address `json:"wallet"`
}

// NewAccountResponse maps an account, leaving out its password hash.
func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role, Wallet: a.Wallet}
}
