package middleware

import (
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"legend/api/types"
)

var (
	rateLimiters sync.Map
)

// RateLimitMiddleware allows perMinute requests per client IP, with the same
// amount as burst.
func RateLimitMiddleware(perMinute int) fiber.Handler {
	limit := rate.Limit(float64(perMinute) / 60.0)

	return func(c *fiber.Ctx) error {
		clientIP := c.IP()

		limiterInterface, _ := rateLimiters.LoadOrStore(clientIP, rate.NewLimiter(limit, perMinute))
		limiter := limiterInterface.(*rate.Limiter)

		if !limiter.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(types.ErrorResponse{
				Success: false,
				Message: fmt.Sprintf("Ratelimit exceeded: %d requests per minute", perMinute),
			})
		}

		return c.Next()
	}
}

func ClearRateLimiters() {
	rateLimiters.Range(func(key, value interface{}) bool {
		rateLimiters.Delete(key)
		return true
	})
}
