package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"simple-push-service/internal/authtoken"
	"simple-push-service/internal/observability"
)

// SetupMiddleware mirrors the teacher's middleware stack: recover, then
// request-id, then CORS, then an access-log + metrics layer.
func SetupMiddleware(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics) {
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Authorization,Content-Type",
	}))

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Info("http_request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("request_id", c.Get("X-Request-ID")),
		)

		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), c.Route().Path, fmt.Sprintf("%d", status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), c.Route().Path).Observe(duration.Seconds())

		return err
	})
}

// RequireBearerToken validates the Authorization header against the token
// codec and stashes the parsed claims in locals for handlers that need
// the caller's identity (GET /api/get_me).
func RequireBearerToken(codec *authtoken.Codec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			return fail(c, fiber.StatusUnauthorized, "missing or malformed bearer token")
		}

		claims, err := codec.Parse(header[len(prefix):])
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}
