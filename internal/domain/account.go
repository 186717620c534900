package domain

import "time"

// Role distinguishes token holders from registry administrators.
type Role string

const (
	RoleHolder Role = "HOLDER"
	RoleAdmin  Role = "ADMIN"
)

// Account is a caller of the service. Its wallet is the owner address used
// for identity records and token accounts.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Wallet       Address
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the account administers the registry.
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
