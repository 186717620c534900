package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-registry/internal/api/dto"
	"github.com/spec-kit/identity-registry/internal/service"
	apperrors "github.com/spec-kit/identity-registry/pkg/util/errorutil"
)

// PollsHandler exposes the poll ledger.
type PollsHandler struct {
	polls *service.PollService
}

// NewPollsHandler constructs handler.
func NewPollsHandler(polls *service.PollService) *PollsHandler {
	return &PollsHandler{polls: polls}
}

// Create handles POST /polls.
func (h *PollsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.PollCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.polls.CreatePoll(c.UserContext(), actor, service.PollCreateInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Candidates:  req.Candidates,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewPollViewResponse(view))
}

// List handles GET /polls.
func (h *PollsHandler) List(c *fiber.Ctx) error {
	limit, offset, err := pagination(c, 20)
	if err != nil {
		return err
	}
	polls, err := h.polls.ListPolls(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	out := make([]dto.PollResponse, 0, len(polls))
	for _, p := range polls {
		out = append(out, dto.NewPollResponse(p))
	}
	return data(c, http.StatusOK, out)
}

// Get handles GET /polls/:id.
func (h *PollsHandler) Get(c *fiber.Ctx) error {
	view, err := h.polls.GetPoll(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewPollViewResponse(view))
}

// AddCandidate handles POST /polls/:id/candidates.
func (h *PollsHandler) AddCandidate(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CandidateCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	candidate, err := h.polls.AddCandidate(c.UserContext(), actor, c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewCandidateResponse(*candidate))
}

// Vote handles POST /polls/:id/votes.
func (h *PollsHandler) Vote(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	receipt, err := h.polls.Vote(c.UserContext(), actor, c.Params("id"), req.CandidateID)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewVoteResponse(receipt))
}
