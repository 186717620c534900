package events

import (
	"time"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentityInitiated   EventType = "identity_initiated"
	EventIdentityBurned      EventType = "identity_burned"
	EventIdentityExpired     EventType = "identity_expired"
	EventIdentityClosed      EventType = "identity_closed"
	EventRegistryInitialized EventType = "registry_initialized"
	EventVoteCast            EventType = "vote_cast"
)

// AllEventTypes lists every type the service publishes.
var AllEventTypes = []EventType{
	EventIdentityInitiated,
	EventIdentityBurned,
	EventIdentityExpired,
	EventIdentityClosed,
	EventRegistryInitialized,
	EventVoteCast,
}

// Actor identifies who triggered an event.
type Actor struct {
	AccountID string         `json:"account_id,omitempty"`
	Wallet    domain.Address `json:"wallet"`
	Role      domain.Role    `json:"role,omitempty"`
}

// Event represents a domain event emitted by services. Subject is the
// address or id the event is about.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IdentityInitiatedPayload payload.
type IdentityInitiatedPayload struct {
	Owner       domain.Address `json:"owner"`
	Mint        domain.Address `json:"mint"`
	Destination domain.Address `json:"destination"`
	RegistrySeq int64          `json:"registry_seq"`
}

// IdentityDeactivatedPayload is shared by burn and expire.
type IdentityDeactivatedPayload struct {
	Owner       domain.Address `json:"owner"`
	Mint        domain.Address `json:"mint"`
	TokenBurned bool           `json:"token_burned"`
}

// IdentityClosedPayload payload.
type IdentityClosedPayload struct {
	Owner          domain.Address `json:"owner"`
	EntriesRemoved int64          `json:"entries_removed"`
}

// RegistryInitializedPayload payload.
type RegistryInitializedPayload struct {
	Created bool `json:"created"`
}

// VoteCastPayload payload. The voter is carried by the actor.
type VoteCastPayload struct {
	CandidateID string `json:"candidate_id"`
}
