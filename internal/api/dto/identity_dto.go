package dto

import (
	"time"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// IdentityInitiateRequest carries the raw identity fields. They are hashed
// on arrival and never stored or echoed.
type IdentityInitiateRequest struct {
	Name   string `json:"name"`
	DOB    string `json:"dob"`
	Gender string `json:"gender"`
}

// IdentityResponse is the public view of an identity record.
type IdentityResponse struct {
	Address     domain.Address        `json:"address"`
	Owner       domain.Address        `json:"owner"`
	Mint        domain.Address        `json:"mint"`
	Destination domain.Address        `json:"destination"`
	Identity    domain.HashedIdentity `json:"identity"`
	IsActive    bool                  `json:"is_active"`
	State       domain.IdentityState  `json:"state"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewIdentityResponse maps a record.
func NewIdentityResponse(r *domain.IdentityRecord) IdentityResponse {
	return IdentityResponse{
		Address:     r.Address,
		Owner:       r.Owner,
		Mint:        r.Mint,
		Destination: r.Destination,
		Identity:    r.Identity,
		IsActive:    r.IsActive,
		State:       r.State(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
