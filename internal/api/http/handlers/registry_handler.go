package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-registry/internal/api/dto"
	"github.com/spec-kit/identity-registry/internal/service"
)

// RegistryHandler exposes the global registry.
type RegistryHandler struct {
	registry *service.RegistryService
	activity *service.ActivityService
}

// NewRegistryHandler constructs handler.
func NewRegistryHandler(registry *service.RegistryService, activity *service.ActivityService) *RegistryHandler {
	return &RegistryHandler{registry: registry, activity: activity}
}

// Initialize handles POST /registry/initialize. A first call answers 201,
// repeated calls 200 with the existing registry.
func (h *RegistryHandler) Initialize(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	reg, created, err := h.registry.Initialize(c.UserContext(), actor)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return data(c, status, fiber.Map{
		"address":    reg.Address,
		"created":    created,
		"created_at": reg.CreatedAt,
	})
}

// Get handles GET /registry.
func (h *RegistryHandler) Get(c *fiber.Ctx) error {
	stats, err := h.registry.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewRegistryResponse(stats))
}

// Entries handles GET /registry/entries.
func (h *RegistryHandler) Entries(c *fiber.Ctx) error {
	limit, offset, err := pagination(c, 50)
	if err != nil {
		return err
	}
	entries, err := h.registry.ListEntries(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewRegistryEntryResponses(entries))
}

// Activity handles GET /registry/activity.
func (h *RegistryHandler) Activity(c *fiber.Ctx) error {
	limit, err := intQuery(c, "limit", 50)
	if err != nil {
		return err
	}
	if h.activity == nil {
		return data(c, http.StatusOK, []any{})
	}
	return data(c, http.StatusOK, h.activity.Recent(limit))
}
