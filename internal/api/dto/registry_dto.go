package dto

import (
	"time"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/service"
)

// RegistryResponse summarizes the registry.
type RegistryResponse struct {
	Address     domain.Address `json:"address"`
	Initialized bool           `json:"initialized"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
	Entries     int64          `json:"entries"`
}

// NewRegistryResponse maps registry stats.
func NewRegistryResponse(s *service.RegistryStats) RegistryResponse {
	return RegistryResponse{
		Address:     s.Address,
		Initialized: s.Initialized,
		CreatedAt:   s.CreatedAt,
		Entries:     s.Entries,
	}
}

// RegistryEntryResponse is one registered triple.
type RegistryEntryResponse struct {
	Seq           int64                 `json:"seq"`
	RecordAddress domain.Address        `json:"record_address"`
	Identity      domain.HashedIdentity `json:"identity"`
	RegisteredAt  time.Time             `json:"registered_at"`
}

// NewRegistryEntryResponses maps entries, preserving order.
func NewRegistryEntryResponses(entries []domain.RegistryEntry) []RegistryEntryResponse {
	out := make([]RegistryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, RegistryEntryResponse{
			Seq:           e.Seq,
			RecordAddress: e.RecordAddress,
			Identity:      e.Identity,
			RegisteredAt:  e.RegisteredAt,
		})
	}
	return out
}
