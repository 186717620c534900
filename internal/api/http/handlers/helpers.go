package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-registry/internal/auth"
	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/service"
	apperrors "github.com/spec-kit/identity-registry/pkg/util/errorutil"
)

func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.ActorFromAccount(principal.Account), nil
}

func addressParam(c *fiber.Ctx) (domain.Address, error) {
	return domain.ParseAddress(c.Params("address"))
}

// pagination reads limit and offset query parameters.
func pagination(c *fiber.Ctx, defaultLimit int) (int, int, error) {
	limit, err := intQuery(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func intQuery(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewValidationError("invalid "+key, map[string]any{key: raw})
	}
	return v, nil
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}
