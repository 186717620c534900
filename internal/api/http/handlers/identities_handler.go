package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-registry/internal/api/dto"
	"github.com/spec-kit/identity-registry/internal/service"
	apperrors "github.com/spec-kit/identity-registry/pkg/util/errorutil"
)

// IdentitiesHandler exposes the identity lifecycle.
type IdentitiesHandler struct {
	identities *service.IdentityService
}

// NewIdentitiesHandler constructs handler.
func NewIdentitiesHandler(identities *service.IdentityService) *IdentitiesHandler {
	return &IdentitiesHandler{identities: identities}
}

// Initiate handles POST /identities.
func (h *IdentitiesHandler) Initiate(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.IdentityInitiateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	record, err := h.identities.Initiate(c.UserContext(), actor, req.Name, req.DOB, req.Gender)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewIdentityResponse(record))
}

// Me handles GET /identities/me.
func (h *IdentitiesHandler) Me(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	record, err := h.identities.GetByOwner(c.UserContext(), actor.Wallet)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewIdentityResponse(record))
}

// Get handles GET /identities/:address.
func (h *IdentitiesHandler) Get(c *fiber.Ctx) error {
	address, err := addressParam(c)
	if err != nil {
		return err
	}
	record, err := h.identities.Get(c.UserContext(), address)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewIdentityResponse(record))
}

// Burn handles POST /identities/:address/burn.
func (h *IdentitiesHandler) Burn(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	address, err := addressParam(c)
	if err != nil {
		return err
	}
	record, err := h.identities.Burn(c.UserContext(), actor, address)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewIdentityResponse(record))
}

// Expire handles POST /identities/:address/expire.
func (h *IdentitiesHandler) Expire(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	address, err := addressParam(c)
	if err != nil {
		return err
	}
	record, err := h.identities.Expire(c.UserContext(), actor, address)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewIdentityResponse(record))
}

// Close handles DELETE /identities/:address.
func (h *IdentitiesHandler) Close(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	address, err := addressParam(c)
	if err != nil {
		return err
	}
	if err := h.identities.Close(c.UserContext(), actor, address); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
