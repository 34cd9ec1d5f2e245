package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/middleware"
)

// Session returns the claims of the presented bearer token.
func Session(c *fiber.Ctx) error {
	claims, ok := middleware.GetSessionClaims(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	resp := fiber.Map{
		"user_id": claims.UserID,
		"plan_id": claims.PlanID,
		"name":    claims.Name,
	}
	if claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Time
	}
	return c.JSON(resp)
}

// Health reports that the server is up.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
