package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/ScrapMarket/app/repository"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/billing"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/mail"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/marketplace"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/session"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/statistics"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/usercontext"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/viewmodel"
)

// BillingService is what the pages and the webhook need from billing.Service.
type BillingService interface {
	Configured() bool
	HandleWebhook(ctx context.Context, payload []byte, signature string) (billing.WebhookResult, error)
	StartCheckout(ctx context.Context, viewer *billing.Viewer, priceID string) (string, error)
	SyncCheckoutSession(ctx context.Context, viewer *billing.Viewer, sessionID string) error
	ResolveContext(ctx context.Context, viewer *billing.Viewer) (*billing.Context, error)
	LoadSnapshot(ctx context.Context, customerID string) *billing.Snapshot
}

// Stats provides the start page counters.
type Stats interface {
	Get(ctx context.Context) statistics.Data
}

// Prices are the plans offered on the pricing page.
type Prices struct {
	Monthly string
	Yearly  string
}

// Deps wires a Controller.
type Deps struct {
	Users        repository.UserRepository
	Billing      BillingService
	Market       *marketplace.Service
	Sessions     *session.Store
	Mailer       mail.Sender
	Captcha      *hcaptcha.Verifier
	Stats        Stats
	BaseURL      string
	Prices       Prices
	OAuthEnabled bool
	IsDev        bool
	Logger       zerolog.Logger
}

// Controller serves the HTML pages and the billing webhook.
type Controller struct {
	Deps
	log zerolog.Logger
}

func New(d Deps) *Controller {
	return &Controller{Deps: d, log: d.Logger.With().Str("component", "controllers").Logger()}
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals("csrf").(string)
	return token
}

// render wraps data with the layout view model and renders page inside layouts/main.
func (ctl *Controller) render(c *fiber.Ctx, page, title string, data fiber.Map) error {
	uc := usercontext.GetUserContext(c)
	layout := viewmodel.Layout{
		Page:         page,
		Title:        title,
		User:         uc,
		Msg:          flash.Get(c),
		CSRF:         csrfToken(c),
		OAuthEnabled: ctl.OAuthEnabled,
		IsDev:        ctl.IsDev,
	}
	if uc.IsLoggedIn && ctl.Market != nil {
		if n, err := ctl.Market.UnreadCount(c.UserContext(), uc.UserID); err == nil {
			layout.Unread = n
		}
	}
	if data == nil {
		data = fiber.Map{}
	}
	data["Layout"] = layout
	return c.Render(page, data, "layouts/main")
}

func redirectError(c *fiber.Ctx, to, msg string) error {
	return flash.WithError(c, fiber.Map{"type": "error", "message": msg}).Redirect(to, fiber.StatusSeeOther)
}

func redirectSuccess(c *fiber.Ctx, to, msg string) error {
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": msg}).Redirect(to, fiber.StatusSeeOther)
}

// marketError turns a marketplace error into a flash redirect, or a 404 page.
func (ctl *Controller) marketError(c *fiber.Ctx, back string, err error) error {
	status, msg := marketplace.HTTPStatus(err)
	switch status {
	case fiber.StatusNotFound:
		return ctl.renderStatus(c, fiber.StatusNotFound, "Not found", "This page does not exist or was removed.")
	case fiber.StatusPaymentRequired:
		return flash.WithInfo(c, fiber.Map{"type": "info", "message": "This feature is part of the premium plan."}).
			Redirect("/pricing", fiber.StatusSeeOther)
	case fiber.StatusInternalServerError:
		ctl.log.Error().Err(err).Str("path", c.Path()).Msg("marketplace request failed")
		return redirectError(c, back, "Something went wrong ("+msg+"). Please try again.")
	default:
		return redirectError(c, back, msg)
	}
}

func (ctl *Controller) renderStatus(c *fiber.Ctx, status int, title, message string) error {
	c.Status(status)
	return ctl.render(c, "error", title, fiber.Map{"Status": status, "Message": message})
}

// HandleNotFound renders the 404 page for unmatched routes.
func (ctl *Controller) HandleNotFound(c *fiber.Ctx) error {
	return ctl.renderStatus(c, fiber.StatusNotFound, "Not found", "This page does not exist or was removed.")
}
