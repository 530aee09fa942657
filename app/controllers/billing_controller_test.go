package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/billing"
)

func webhookApp(t *testing.T, fb *fakeBilling) *fiber.App {
	t.Helper()
	ctl := newTestController(Deps{Billing: fb})
	app := newTestApp(t, nil)
	app.Post("/webhooks/stripe", ctl.HandleStripeWebhook)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body []byte) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestStripeWebhookReceived(t *testing.T) {
	fb := &fakeBilling{webhookRes: billing.WebhookResult{EventID: "evt_1", Outcome: "processed"}}
	status, out := postWebhook(t, webhookApp(t, fb), []byte(`{"id":"evt_1"}`))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]any{"received": true}, out)
	assert.Equal(t, "t=1,v1=abc", fb.gotSig)
	assert.Equal(t, `{"id":"evt_1"}`, string(fb.gotPayload))
}

func TestStripeWebhookDuplicate(t *testing.T) {
	fb := &fakeBilling{webhookRes: billing.WebhookResult{EventID: "evt_1", Duplicate: true}}
	status, out := postWebhook(t, webhookApp(t, fb), []byte(`{"id":"evt_1"}`))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["received"])
	assert.Equal(t, true, out["duplicate"])
}

func TestStripeWebhookErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"bad signature":  {billing.ErrInvalidSignature, fiber.StatusBadRequest},
		"not configured": {billing.ErrMissingConfig, fiber.StatusInternalServerError},
		"store failure":  {errors.New("db down"), fiber.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, out := postWebhook(t, webhookApp(t, &fakeBilling{webhookErr: tc.err}), []byte(`{}`))
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, out["error"])
			assert.NotContains(t, out["error"], "db down")
		})
	}
}

func TestStripeWebhookTooLarge(t *testing.T) {
	fb := &fakeBilling{}
	status, _ := postWebhook(t, webhookApp(t, fb), bytes.Repeat([]byte("a"), MaxWebhookBody+1))
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, status)
	assert.Nil(t, fb.gotPayload)
}

func TestBillingUpgradeRedirectsToCheckout(t *testing.T) {
	fb := &fakeBilling{configured: true, checkoutURL: "https://checkout.stripe.com/c/pay/cs_1"}
	ctl := newTestController(Deps{Billing: fb})
	app := newTestApp(t, loggedIn())
	app.Post("/billing/upgrade", ctl.HandleBillingUpgrade)

	resp := postForm(t, app, "/billing/upgrade", url.Values{"price_id": {"price_monthly"}})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fb.checkoutURL, resp.Header.Get("Location"))
	assert.Equal(t, "price_monthly", fb.gotPrice)
	require.NotNil(t, fb.gotViewer)
	assert.Equal(t, uint(7), fb.gotViewer.UserID)
}

func TestBillingUpgradeErrorsGoBackToPricing(t *testing.T) {
	for _, err := range []error{billing.ErrEmailNotConfirmed, billing.ErrUnknownPrice, billing.ErrMissingConfig} {
		fb := &fakeBilling{checkoutErr: err}
		ctl := newTestController(Deps{Billing: fb})
		app := newTestApp(t, loggedIn())
		app.Post("/billing/upgrade", ctl.HandleBillingUpgrade)

		resp := postForm(t, app, "/billing/upgrade", url.Values{"price_id": {"price_x"}})
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode, err.Error())
		assert.Equal(t, "/pricing", resp.Header.Get("Location"), err.Error())
	}
}

func TestBillingSuccessSyncsSession(t *testing.T) {
	fb := &fakeBilling{configured: true}
	ctl := newTestController(Deps{Billing: fb})
	app := newTestApp(t, loggedIn())
	app.Get("/billing/success", ctl.HandleBillingSuccess)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/billing/success?session_id=cs_1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "cs_1", fb.gotSession)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/billing/success", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/billing", resp.Header.Get("Location"))
}

func TestPricingPage(t *testing.T) {
	ctl := newTestController(Deps{Billing: &fakeBilling{configured: true}, Prices: Prices{Monthly: "price_m", Yearly: "price_y"}})
	app := newTestApp(t, loggedIn())
	app.Get("/pricing", ctl.HandlePricing)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/pricing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "price_m")
	assert.Contains(t, body, "price_y")
}

func TestSnapshotViewsNil(t *testing.T) {
	sub, card, invoices := snapshotViews(nil)
	assert.Nil(t, sub)
	assert.Nil(t, card)
	assert.Empty(t, invoices)
}
