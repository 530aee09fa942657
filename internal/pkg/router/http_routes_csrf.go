package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/ScrapMarket/app/controllers"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/entitlements"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !h.deps.IsDev,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}
	pages := h.deps.Pages
	auth := middleware.RequireAuth
	offers := middleware.RequirePremium(entitlements.FeatureViewOffers)
	messaging := middleware.RequirePremium(entitlements.FeatureMessaging)

	group := app.Group("", csrf.New(csrfConf))
	group.Get("/", pages.HandleHome)
	group.Get("/pricing", pages.HandlePricing)

	// Auth
	group.Get("/login", controllers.RedirectIfLoggedIn, pages.HandleAuthLogin)
	group.Post("/login", controllers.RedirectIfLoggedIn, pages.HandleAuthLogin)
	group.Get("/register", controllers.RedirectIfLoggedIn, pages.HandleAuthRegister)
	group.Post("/register", controllers.RedirectIfLoggedIn, pages.HandleAuthRegister)
	group.Get("/activate", pages.HandleAuthActivate)
	group.Post("/logout", auth, pages.HandleAuthLogout)

	// Listings
	group.Get("/listings", pages.HandleListingIndex)
	group.Get("/listings/new", auth, pages.HandleListingNew)
	group.Post("/listings", auth, pages.HandleListingCreate)
	group.Get("/listings/:uuid", pages.HandleListingShow)
	group.Get("/listings/:uuid/edit", auth, pages.HandleListingEdit)
	group.Post("/listings/:uuid", auth, pages.HandleListingUpdate)
	group.Post("/listings/:uuid/sold", auth, pages.HandleListingSold)
	group.Post("/listings/:uuid/archive", auth, pages.HandleListingArchive)
	group.Post("/listings/:uuid/photos", auth, pages.HandleListingPhoto)
	group.Post("/listings/:uuid/save", auth, pages.HandleSave)
	group.Post("/listings/:uuid/unsave", auth, pages.HandleUnsave)
	group.Post("/listings/:uuid/offers", auth, pages.HandleOfferSubmit)
	group.Post("/listings/:uuid/contact", auth, messaging, pages.HandleMessagesOpen)

	// Offers
	group.Get("/offers", auth, offers, pages.HandleOffersReceived)
	group.Get("/offers/sent", auth, pages.HandleOffersSent)
	group.Post("/offers/:id/accept", auth, offers, pages.HandleOfferAccept)
	group.Post("/offers/:id/reject", auth, offers, pages.HandleOfferReject)
	group.Post("/offers/:id/withdraw", auth, pages.HandleOfferWithdraw)

	// Messages
	group.Get("/messages", auth, pages.HandleMessagesIndex)
	group.Get("/messages/:id", auth, pages.HandleMessagesThread)
	group.Post("/messages/:id", auth, messaging, pages.HandleMessagesSend)

	// Follows, saved listings, notifications
	group.Post("/sellers/:id/follow", auth, pages.HandleFollow)
	group.Post("/sellers/:id/unfollow", auth, pages.HandleUnfollow)
	group.Get("/following", auth, pages.HandleFollowing)
	group.Get("/saved", auth, pages.HandleSaved)
	group.Get("/notifications", auth, pages.HandleNotifications)
	group.Post("/notifications/read-all", auth, pages.HandleNotificationsReadAll)
	group.Post("/notifications/:id/read", auth, pages.HandleNotificationRead)

	// Settings
	group.Get("/settings", auth, pages.HandleSettings)
	group.Post("/settings/api-key", auth, pages.HandleAPIKeyIssue)
	group.Post("/settings/api-key/revoke", auth, pages.HandleAPIKeyRevoke)

	// Billing pages
	group.Get("/billing", auth, pages.HandleBillingPage)
	group.Post("/billing/upgrade", auth, pages.HandleBillingUpgrade)
	group.Get("/billing/success", auth, pages.HandleBillingSuccess)
}
