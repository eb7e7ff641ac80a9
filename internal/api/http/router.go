package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-engine/internal/api/http/handlers"
	"github.com/spec-kit/triage-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Triage         *handlers.TriageHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.IssueToken)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)
	api.Post("/tickets", cfg.Triage.SubmitTicket)
	api.Get("/tickets/:id/decision", cfg.Triage.GetDecision)
	api.Post("/tickets/:id/actions", cfg.Triage.RecordAction)
	api.Get("/tickets/:id/audit", cfg.Triage.GetAuditLog)
	api.Get("/analytics/summary", cfg.Analytics.Summary)
}
