package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthChecker is the subset of *store.DB (and, via a thin wrapper, the
// Redis client) the readiness probe depends on.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Ready handles GET /readyz: verifies the database and delay-queue
// connections are reachable before reporting ready.
func Ready(checkers ...HealthChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		for _, checker := range checkers {
			if err := checker.Health(ctx); err != nil {
				return fail(c, fiber.StatusServiceUnavailable, "not ready")
			}
		}
		return ok(c, fiber.Map{"status": "ready"})
	}
}
