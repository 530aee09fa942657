package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/entitlements"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in web session; redirects to /login if missing.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAPISessionAuth ensures a logged-in session for API routes and returns JSON 401 instead of redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
	}
	return c.Next()
}

// RequirePremium sends users whose plan lacks feature to /pricing.
func RequirePremium(feature entitlements.Feature) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !usercontext.GetUserContext(c).Allows(feature) {
			return flash.WithInfo(c, fiber.Map{
				"type":    "info",
				"message": "This feature is part of the premium plan.",
			}).Redirect("/pricing", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// RequirePremiumAPI answers 402 on JSON routes when the plan lacks feature.
func RequirePremiumAPI(feature entitlements.Feature) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !usercontext.GetUserContext(c).Allows(feature) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "premium required"})
		}
		return c.Next()
	}
}
