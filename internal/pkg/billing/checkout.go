package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
)

// EnsureCustomer returns the billing customer of viewer, reusing a stored
// link, then an email match, and creating one only when neither exists.
func (s *Service) EnsureCustomer(ctx context.Context, viewer *Viewer) (string, error) {
	if err := s.requireConfigured(); err != nil {
		return "", err
	}
	bc, err := s.ResolveContext(ctx, viewer)
	if err != nil {
		return "", err
	}
	if bc == nil {
		return "", ErrUnauthenticated
	}
	if id := deref(bc.StripeCustomerID); id != "" {
		return id, nil
	}

	resolved, err := s.ResolveCustomerByEmail(ctx, viewer.UserID, viewer.Email)
	if err != nil {
		s.log.Warn().Err(err).Str("user", redactUser(viewer.UserID)).Msg("email fallback failed, creating customer")
	} else if id := deref(resolved.StripeCustomerID); id != "" {
		return id, nil
	}

	c, err := s.gateway.CreateCustomer(ctx, viewer.Email, viewer.UserID)
	if err != nil {
		s.metrics.gatewayError("create_customer")
		return "", err
	}
	if err := s.repo.UpsertCustomerLink(ctx, viewer.UserID, c.ID); err != nil {
		return "", fmt.Errorf("link customer: %w", err)
	}
	return c.ID, nil
}

// StartCheckout opens a hosted subscription checkout and returns its URL.
func (s *Service) StartCheckout(ctx context.Context, viewer *Viewer, priceID string) (string, error) {
	if err := s.requireConfigured(); err != nil {
		return "", err
	}
	if viewer == nil || viewer.UserID == 0 {
		return "", ErrUnauthenticated
	}
	if !viewer.EmailConfirmed {
		return "", ErrEmailNotConfirmed
	}
	price, err := s.resolvePrice(priceID)
	if err != nil {
		return "", err
	}
	customer, err := s.EnsureCustomer(ctx, viewer)
	if err != nil {
		return "", err
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		UserID:     viewer.UserID,
		CustomerID: customer,
		PriceID:    price,
		SuccessURL: s.cfg.BaseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.cfg.BaseURL + "/pricing",
	})
	if err != nil {
		s.metrics.gatewayError("create_checkout_session")
		return "", err
	}
	if sess.URL == "" {
		return "", fmt.Errorf("checkout session %s has no url", RedactID(sess.ID))
	}
	return sess.URL, nil
}

// SyncCheckoutSession reconciles the entitlement from a finished checkout
// without waiting for the webhook.
func (s *Service) SyncCheckoutSession(ctx context.Context, viewer *Viewer, sessionID string) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	if viewer == nil || viewer.UserID == 0 {
		return ErrUnauthenticated
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidRequest)
	}
	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.metrics.gatewayError("get_checkout_session")
		return err
	}
	if sess.Status != stripe.CheckoutSessionStatusComplete {
		return fmt.Errorf("%w: checkout session is not complete", ErrInvalidRequest)
	}
	if subscriptionID(sess.Subscription) == "" && !checkoutPaid(sess) {
		return fmt.Errorf("%w: checkout session is not paid", ErrInvalidRequest)
	}
	if err := s.applyCheckoutSession(ctx, viewer.UserID, sess); err != nil {
		if IsSkip(err) {
			return ErrForbidden
		}
		return err
	}
	return nil
}

// CreateSetupIntent starts a card update flow and returns its client secret.
func (s *Service) CreateSetupIntent(ctx context.Context, viewer *Viewer) (string, error) {
	if err := s.requireConfigured(); err != nil {
		return "", err
	}
	customer, err := s.EnsureCustomer(ctx, viewer)
	if err != nil {
		return "", err
	}
	si, err := s.gateway.CreateSetupIntent(ctx, customer)
	if err != nil {
		s.metrics.gatewayError("create_setup_intent")
		return "", err
	}
	return si.ClientSecret, nil
}

// AttachPaymentMethod attaches a confirmed payment method and makes it the
// default for invoices and the current subscription.
func (s *Service) AttachPaymentMethod(ctx context.Context, viewer *Viewer, paymentMethodID string) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	paymentMethodID = strings.TrimSpace(paymentMethodID)
	if paymentMethodID == "" {
		return fmt.Errorf("%w: paymentMethodId is required", ErrInvalidRequest)
	}
	customer, err := s.EnsureCustomer(ctx, viewer)
	if err != nil {
		return err
	}
	if _, err := s.gateway.AttachPaymentMethod(ctx, paymentMethodID, customer); err != nil {
		s.metrics.gatewayError("attach_payment_method")
		return err
	}
	bc, err := s.ResolveContext(ctx, viewer)
	if err != nil {
		return err
	}
	if err := s.gateway.SetDefaultPaymentMethod(ctx, customer, deref(bc.StripeSubscriptionID), paymentMethodID); err != nil {
		s.metrics.gatewayError("set_default_payment_method")
		return err
	}
	return nil
}

// CancelSubscription schedules the viewer's subscription to end at period end.
func (s *Service) CancelSubscription(ctx context.Context, viewer *Viewer) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	bc, err := s.ResolveContext(ctx, viewer)
	if err != nil {
		return err
	}
	if bc == nil {
		return ErrUnauthenticated
	}
	subID := deref(bc.StripeSubscriptionID)
	if subID == "" {
		return ErrNoSubscription
	}
	sub, err := s.gateway.CancelAtPeriodEnd(ctx, subID)
	if err != nil {
		s.metrics.gatewayError("cancel_subscription")
		return err
	}
	return s.WriteEntitlement(ctx, updateFromSubscription(viewer.UserID, deref(bc.StripeCustomerID), sub))
}
