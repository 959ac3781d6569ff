package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ExternalIDKey is the fiber Locals key holding the authenticated external id.
const ExternalIDKey = "external_id"

// Authenticator resolves a bearer token to an external id. *services.AuthService satisfies it.
type Authenticator interface {
	Authenticate(token string) (int64, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		externalID, err := auth.Authenticate(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Printf("JWT validation failed for %s %s: %v", c.Method(), c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(ExternalIDKey, externalID)
		return c.Next()
	}
}

// ExternalID returns the id stored by AuthRequired.
func ExternalID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(ExternalIDKey).(int64)
	return id, ok
}
