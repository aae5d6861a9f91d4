package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/crimecast/crimecast/internal/config"
	"github.com/crimecast/crimecast/internal/models"
)

// RateLimit applies one token bucket to every request it guards.
// Rejected requests get 429 and a Retry-After hint.
func RateLimit(cfg config.RateLimitConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	retryAfter := 1
	if cfg.RequestsPerSecond > 0 && cfg.RequestsPerSecond < 1 {
		retryAfter = int(1/cfg.RequestsPerSecond + 0.5)
	}

	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(
				models.NewErrorResponse("RATE_LIMITED", "Too many requests, retry later."))
		}
		return c.Next()
	}
}
