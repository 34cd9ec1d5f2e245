package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/utils"
)

const claimsContextKey = "sessionClaims"

// AuthMiddleware validates bearer JWT tokens and loads the session claims into context.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// GetSessionClaims extracts the authenticated session from context.
func GetSessionClaims(c *fiber.Ctx) (*utils.SessionClaims, bool) {
	claims, ok := c.Locals(claimsContextKey).(*utils.SessionClaims)
	return claims, ok && claims != nil
}

// RequirePlan rejects sessions whose plan is not planID. It must run after
// AuthMiddleware.
func RequirePlan(planID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := GetSessionClaims(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		if claims.PlanID != planID {
			return fiber.NewError(fiber.StatusForbidden, "forbidden")
		}
		return c.Next()
	}
}
