package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/entitlements"
)

// Auth holds the guards the routes are mounted behind.
type Auth struct {
	// Bearer authenticates with a personal API key.
	Bearer fiber.Handler
	// Session requires a logged-in browser session.
	Session fiber.Handler
	// Premium rejects users whose plan lacks the feature.
	Premium func(entitlements.Feature) fiber.Handler
}

// RegisterHandlers mounts the v1 routes on router.
func RegisterHandlers(router fiber.Router, s *APIServer, auth Auth) {
	router.Post("/billing/checkout", auth.Bearer, s.PostBillingCheckout)
	router.Get("/billing/sync", auth.Session, s.GetBillingSync)
	router.Post("/billing/setup-intent", auth.Session, s.PostBillingSetupIntent)
	router.Post("/billing/attach-payment-method", auth.Session, s.PostBillingAttachPaymentMethod)
	router.Post("/billing/cancel", auth.Session, s.PostBillingCancel)
	router.Get("/billing/entitlement", auth.Session, s.GetBillingEntitlement)

	router.Get("/listings", auth.Bearer, s.GetListings)
	router.Get("/listings/:uuid", auth.Bearer, func(c *fiber.Ctx) error {
		return s.GetListing(c, c.Params("uuid"))
	})
	router.Get("/offers/received", auth.Bearer, auth.Premium(entitlements.FeatureViewOffers), s.GetOffersReceived)
	router.Post("/devices", auth.Bearer, s.PostDevices)
	router.Get("/notifications/unread-count", auth.Session, s.GetUnreadCount)
}
