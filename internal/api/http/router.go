package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/identity-registry/internal/api/http/handlers"
	"github.com/spec-kit/identity-registry/internal/auth"
	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Registry       *handlers.RegistryHandler
	Identities     *handlers.IdentitiesHandler
	Polls          *handlers.PollsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}

	authGroup := app.Group("/auth")
	authGroup.Post("/accounts/register", cfg.Accounts.Register)
	authGroup.Post("/accounts/login", cfg.Accounts.Login)
	authGroup.Get("/accounts/me", append(authenticated, cfg.Accounts.Me)...)

	registry := app.Group("/registry", authenticated...)
	registry.Get("/", cfg.Registry.Get)
	registry.Get("/entries", cfg.Registry.Entries)
	registry.Post("/initialize", auth.RequireAdmin(), cfg.Registry.Initialize)
	registry.Get("/activity", auth.RequireAdmin(), cfg.Registry.Activity)

	identities := app.Group("/identities", authenticated...)
	identities.Post("/", auth.RequireRole(domain.RoleHolder), cfg.Identities.Initiate)
	identities.Get("/me", cfg.Identities.Me)
	identities.Get("/:address", cfg.Identities.Get)
	identities.Post("/:address/burn", cfg.Identities.Burn)
	identities.Post("/:address/expire", auth.RequireAdmin(), cfg.Identities.Expire)
	identities.Delete("/:address", cfg.Identities.Close)

	polls := app.Group("/polls", authenticated...)
	polls.Get("/", cfg.Polls.List)
	polls.Post("/", auth.RequireAdmin(), cfg.Polls.Create)
	polls.Get("/:id", cfg.Polls.Get)
	polls.Post("/:id/candidates", auth.RequireAdmin(), cfg.Polls.AddCandidate)
	polls.Post("/:id/votes", cfg.Polls.Vote)
}
