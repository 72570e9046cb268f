package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"simple-push-service/internal/authtoken"
	"simple-push-service/internal/observability"
)

// SetupRoutes wires the three C6 endpoints, the supplemented messages
// listing, and the ambient health/metrics surface (C10), matching the
// teacher's SetupRoutes shape (internal/api/routes.go).
func SetupRoutes(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, handlers *Handlers, codec *authtoken.Codec, readyCheckers ...HealthChecker) {
	SetupMiddleware(app, logger, metrics)

	app.Get("/healthz", handlers.Health)
	app.Get("/readyz", Ready(readyCheckers...))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Post("/auth", handlers.Auth)
	api.Get("/get_me", RequireBearerToken(codec), handlers.GetMe)
	api.Get("/push/:project_id", handlers.Push)
	api.Post("/push/:project_id", handlers.Push)
	api.Get("/messages", handlers.ListMessages)
}
