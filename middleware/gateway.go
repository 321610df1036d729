package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ServiceAuthMiddleware validates the bearer token set by the chat-platform
// adapter. Every request must come through the adapter; the core service is
// never exposed directly.
func ServiceAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ SERVICE_TOKEN is not set, cannot authenticate the bot adapter")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service authentication token missing",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != expectedToken {
			log.Printf("❌ [SERVICE_AUTH] Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service authentication token",
			})
		}
		return c.Next()
	}
}
