package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PerformanceLogger measures response time on the hot routes (session
// polling, lead reads, exports).
func PerformanceLogger() fiber.Handler {
	monitoredRoutes := []string{
		"/api/session",
		"/api/leads",
		"/api/export",
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()

		shouldMonitor := false
		for _, route := range monitoredRoutes {
			if strings.HasPrefix(path, route) {
				shouldMonitor = true
				break
			}
		}

		if !shouldMonitor {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		log.Printf(
			"[PERFORMANCE] %s %s - %d - Duration: %v",
			c.Method(),
			path,
			c.Response().StatusCode(),
			duration,
		)

		return err
	}
}
