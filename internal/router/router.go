package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eventhub-api/internal/config"
	"github.com/noah-isme/eventhub-api/internal/handler"
	"github.com/noah-isme/eventhub-api/internal/middleware"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	CompanyHandler  *handler.CompanyHandler
	EventHandler    *handler.EventHandler
	RequestHandler  *handler.RequestHandler
	ProfileHandler  *handler.ProfileHandler
	ActivityHandler *handler.ActivityHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow))
		deps.AuthHandler.Register(auth)
	}

	if deps.CompanyHandler != nil {
		// The sign-up form needs the directory before authentication.
		deps.CompanyHandler.RegisterPublic(api.Group("/directory/companies"))

		companies := api.Group("/companies", jwtMiddleware)
		deps.CompanyHandler.Register(companies)
	}

	if deps.EventHandler != nil {
		events := api.Group("/events", jwtMiddleware)
		deps.EventHandler.Register(events)
	}

	if deps.RequestHandler != nil {
		requests := api.Group("/requests", jwtMiddleware, middleware.RequireRole(models.RoleDean, models.RoleManager))
		deps.RequestHandler.Register(requests)
	}

	if deps.ProfileHandler != nil {
		profile := api.Group("/users", jwtMiddleware)
		deps.ProfileHandler.Register(profile)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, middleware.RequireRole(models.RoleDean))
		deps.ActivityHandler.Register(activity)
	}
}
