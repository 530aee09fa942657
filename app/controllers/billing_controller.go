package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/billing"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/usercontext"
)

// MaxWebhookBody caps the Stripe webhook payload.
const MaxWebhookBody = 64 << 10

// cardView is the payment method as shown on the billing page.
type cardView struct {
	Brand    string
	Last4    string
	ExpMonth int64
	ExpYear  int64
}

type invoiceView struct {
	Number  string
	Created time.Time
	Amount  string
	Status  string
	URL     string
}

type subscriptionView struct {
	Status            string
	PeriodEnd         time.Time
	CancelAtPeriodEnd bool
}

func snapshotViews(snap *billing.Snapshot) (*subscriptionView, *cardView, []invoiceView) {
	if snap == nil {
		return nil, nil, nil
	}
	var sub *subscriptionView
	if s := snap.Subscription; s != nil {
		sub = &subscriptionView{
			Status:            string(s.Status),
			PeriodEnd:         time.Unix(s.CurrentPeriodEnd, 0),
			CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		}
	}
	var card *cardView
	if pm := snap.PaymentMethod; pm != nil && pm.Card != nil {
		card = &cardView{
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
		}
	}
	invoices := make([]invoiceView, 0, len(snap.Invoices))
	for _, inv := range snap.Invoices {
		if inv == nil {
			continue
		}
		invoices = append(invoices, invoiceView{
			Number:  inv.Number,
			Created: time.Unix(inv.Created, 0),
			Amount:  formatCents(inv.AmountPaid) + " " + strings.ToUpper(string(inv.Currency)),
			Status:  string(inv.Status),
			URL:     inv.HostedInvoiceURL,
		})
	}
	return sub, card, invoices
}

func (ctl *Controller) HandlePricing(c *fiber.Ctx) error {
	return ctl.render(c, "billing/pricing", "Pricing", fiber.Map{
		"Prices":     ctl.Prices,
		"Configured": ctl.Billing.Configured(),
	})
}

// HandleBillingPage shows the plan, the default card and recent invoices.
func (ctl *Controller) HandleBillingPage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	bc, err := ctl.Billing.ResolveContext(ctx, usercontext.GetUserContext(c).Viewer())
	if err != nil {
		ctl.log.Error().Err(err).Msg("resolve billing context failed")
		return ctl.renderStatus(c, fiber.StatusInternalServerError, "Error", "Billing details could not be loaded.")
	}
	data := fiber.Map{"Billing": bc}
	if bc != nil && bc.StripeCustomerID != nil && ctl.Billing.Configured() {
		sub, card, invoices := snapshotViews(ctl.Billing.LoadSnapshot(ctx, *bc.StripeCustomerID))
		data["Subscription"] = sub
		data["Card"] = card
		data["Invoices"] = invoices
	}
	return ctl.render(c, "billing/index", "Billing", data)
}

// HandleBillingUpgrade opens a hosted checkout for the chosen price.
func (ctl *Controller) HandleBillingUpgrade(c *fiber.Ctx) error {
	url, err := ctl.Billing.StartCheckout(c.UserContext(), usercontext.GetUserContext(c).Viewer(), c.FormValue("price_id"))
	if err != nil {
		return ctl.billingError(c, "/pricing", err)
	}
	return c.Redirect(url, fiber.StatusSeeOther)
}

// HandleBillingSuccess is the checkout return URL. It syncs the session so
// premium shows up before the webhook arrives.
func (ctl *Controller) HandleBillingSuccess(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		return redirectError(c, "/billing", "The checkout session is missing.")
	}
	if err := ctl.Billing.SyncCheckoutSession(c.UserContext(), usercontext.GetUserContext(c).Viewer(), sessionID); err != nil {
		return ctl.billingError(c, "/billing", err)
	}
	return ctl.render(c, "billing/success", "Welcome to premium", nil)
}

func (ctl *Controller) billingError(c *fiber.Ctx, back string, err error) error {
	status, msg := billing.HTTPStatus(err)
	switch {
	case errors.Is(err, billing.ErrEmailNotConfirmed):
		return redirectError(c, back, "Please confirm your email address before upgrading.")
	case status >= fiber.StatusInternalServerError:
		ctl.log.Error().Err(err).Str("path", c.Path()).Msg("billing request failed")
		return redirectError(c, back, "Billing is not available right now. Please try again later.")
	default:
		return redirectError(c, back, msg)
	}
}

// HandleStripeWebhook receives billing-platform events.
func (ctl *Controller) HandleStripeWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) > MaxWebhookBody {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "payload too large"})
	}
	payload := make([]byte, len(body))
	copy(payload, body)

	res, err := ctl.Billing.HandleWebhook(c.UserContext(), payload, c.Get("Stripe-Signature"))
	if err != nil {
		status, msg := billing.HTTPStatus(err)
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	if res.Duplicate {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}
	return c.JSON(fiber.Map{"received": true})
}
