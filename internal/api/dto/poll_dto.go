package dto

import (
	"time"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/service"
)

// PollCreateRequest payload for new polls.
type PollCreateRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Candidates  []string  `json:"candidates"`
}

// CandidateCreateRequest payload for adding a candidate.
type CandidateCreateRequest struct {
	Name string `json:"name"`
}

// VoteRequest payload for casting a vote.
type VoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

// CandidateResponse is one candidate with its tally.
type CandidateResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Votes int64  `json:"votes"`
}

// PollResponse is a poll and, when loaded, its candidates.
type PollResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	StartsAt    time.Time           `json:"starts_at"`
	EndsAt      time.Time           `json:"ends_at"`
	CreatedBy   string              `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	Candidates  []CandidateResponse `json:"candidates,omitempty"`
}

// VoteResponse acknowledges a vote.
type VoteResponse struct {
	PollID      string         `json:"poll_id"`
	CandidateID string         `json:"candidate_id"`
	Voter       domain.Address `json:"voter"`
	CastAt      time.Time      `json:"cast_at"`
}

// NewPollResponse maps a poll without candidates.
func NewPollResponse(p domain.Poll) PollResponse {
	return PollResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		StartsAt:    p.StartsAt,
		EndsAt:      p.EndsAt,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

// NewPollViewResponse maps a poll with candidates.
func NewPollViewResponse(v *service.PollView) PollResponse {
	resp := NewPollResponse(v.Poll)
	resp.Candidates = make([]CandidateResponse, 0, len(v.Candidates))
	for _, c := range v.Candidates {
		resp.Candidates = append(resp.Candidates, NewCandidateResponse(c))
	}
	return resp
}

// NewCandidateResponse maps a candidate.
func NewCandidateResponse(c domain.Candidate) CandidateResponse {
	return CandidateResponse{ID: c.ID, Name: c.Name, Votes: c.Votes}
}

// NewVoteResponse maps a receipt.
func NewVoteResponse(r *domain.VoteReceipt) VoteResponse {
	return VoteResponse{PollID: r.PollID, CandidateID: r.CandidateID, Voter: r.Voter, CastAt: r.CastAt}
}
