package router

import (
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	pages := h.deps.Pages

	// Social OAuth
	app.Get("/auth/:provider", pages.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", pages.HandleOAuthCallback)

	// Billing provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/stripe", pages.HandleStripeWebhook)
}
