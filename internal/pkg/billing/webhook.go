package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

const (
	eventCheckoutCompleted     = "checkout.session.completed"
	eventSubscriptionCreated   = "customer.subscription.created"
	eventSubscriptionUpdated   = "customer.subscription.updated"
	eventSubscriptionDeleted   = "customer.subscription.deleted"
	eventInvoicePaymentSuccess = "invoice.payment_succeeded"
	eventInvoicePaymentFailed  = "invoice.payment_failed"
)

// HandleWebhook verifies, deduplicates and applies one billing platform event.
//
// Errors: ErrMissingConfig, ErrInvalidSignature, a ledger insert failure, or a
// failure while applying the event. A failed event is removed from the ledger
// so the redelivery is applied. Events that cannot be mapped to a user are
// acknowledged with Outcome "skipped" and a nil error.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	if err := s.requireConfigured(); err != nil {
		return WebhookResult{}, err
	}
	if signature == "" {
		s.metrics.webhook("unknown", outcomeRejected)
		return WebhookResult{}, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.metrics.webhook("unknown", outcomeRejected)
		s.log.Warn().Err(err).Msg("webhook signature rejected")
		return WebhookResult{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	eventType := string(event.Type)
	res := WebhookResult{EventID: event.ID, Type: eventType}
	logger := s.log.With().Str("event_id", event.ID).Str("event_type", eventType).Logger()

	if err := s.repo.RecordEvent(ctx, event.ID, eventType); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			res.Duplicate = true
			res.Outcome = outcomeDuplicate
			s.metrics.webhook(eventType, outcomeDuplicate)
			logger.Info().Msg("duplicate webhook event")
			return res, nil
		}
		s.metrics.webhook(eventType, outcomeFailed)
		return res, fmt.Errorf("record event: %w", err)
	}

	err = s.dispatch(ctx, event)
	switch {
	case err == nil && isHandledType(eventType):
		res.Outcome = outcomeProcessed
	case err == nil:
		res.Outcome = outcomeIgnored
	case IsSkip(err):
		res.Outcome = outcomeSkipped
		var se *SkipError
		errors.As(err, &se)
		res.Reason = se.Reason
		logger.Info().Str("reason", res.Reason).Msg("webhook event skipped")
	default:
		s.metrics.webhook(eventType, outcomeFailed)
		logger.Error().Err(err).Msg("webhook event failed")
		// the delivery is retried, so it must not be answered as a duplicate
		if ferr := s.repo.ForgetEvent(context.WithoutCancel(ctx), event.ID); ferr != nil {
			logger.Error().Err(ferr).Msg("forget webhook event failed")
		}
		return res, err
	}
	s.metrics.webhook(eventType, res.Outcome)
	return res, nil
}

func isHandledType(t string) bool {
	switch t {
	case eventCheckoutCompleted,
		eventSubscriptionCreated, eventSubscriptionUpdated, eventSubscriptionDeleted,
		eventInvoicePaymentSuccess, eventInvoicePaymentFailed:
		return true
	}
	return false
}

func (s *Service) dispatch(ctx context.Context, event stripe.Event) error {
	if event.Data == nil {
		return skip("empty event data")
	}
	switch string(event.Type) {
	case eventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return s.applyCheckoutSession(ctx, 0, &sess)

	case eventSubscriptionCreated, eventSubscriptionUpdated, eventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.applySubscriptionEvent(ctx, &sub, string(event.Type) == eventSubscriptionDeleted)

	case eventInvoicePaymentSuccess, eventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("decode invoice: %w", err)
		}
		return s.applyInvoiceEvent(ctx, &inv, string(event.Type) == eventInvoicePaymentFailed)
	}
	return nil
}

// applyCheckoutSession writes the entitlement for a completed checkout. When
// expectedUser is non-zero the session must belong to that user.
func (s *Service) applyCheckoutSession(ctx context.Context, expectedUser uint, sess *stripe.CheckoutSession) error {
	userID := parseUserID(sess.Metadata["user_id"])
	if userID == 0 {
		userID = parseUserID(sess.ClientReferenceID)
	}
	customer := customerID(sess.Customer)
	if userID == 0 && expectedUser != 0 && customer != "" {
		owner, err := s.repo.FindUserIDByCustomer(ctx, customer)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("lookup customer link: %w", err)
		}
		userID = owner
	}
	if userID == 0 {
		return skip("no user mapping")
	}
	if expectedUser != 0 && userID != expectedUser {
		return ErrForbidden
	}
	subID := subscriptionID(sess.Subscription)
	if subID == "" && !checkoutPaid(sess) {
		return skip("checkout session not paid")
	}

	if customer != "" {
		if err := s.repo.UpsertCustomerLink(ctx, userID, customer); err != nil {
			return fmt.Errorf("link customer: %w", err)
		}
	}

	upd := EntitlementUpdate{
		UserID:           userID,
		Status:           models.BillingStatusActive,
		StripeCustomerID: strPtr(customer),
	}
	if subID != "" {
		sub, err := s.gateway.GetSubscription(ctx, subID)
		if err != nil {
			s.metrics.gatewayError("get_subscription")
			return err
		}
		upd = updateFromSubscription(userID, customer, sub)
	}
	return s.WriteEntitlement(ctx, upd)
}

func checkoutPaid(sess *stripe.CheckoutSession) bool {
	switch sess.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return true
	}
	return false
}

func (s *Service) applySubscriptionEvent(ctx context.Context, sub *stripe.Subscription, deleted bool) error {
	customer := customerID(sub.Customer)
	if customer == "" {
		return skip("no customer on subscription")
	}
	userID := parseUserID(sub.Metadata["user_id"])
	if userID == 0 {
		owner, err := s.repo.FindUserIDByCustomer(ctx, customer)
		if err != nil {
			if isNotFound(err) {
				return skip("no user mapping")
			}
			return fmt.Errorf("lookup customer link: %w", err)
		}
		userID = owner
	}

	upd := updateFromSubscription(userID, customer, sub)
	if deleted {
		upd.Status = models.BillingStatusCanceled
		upd.CurrentPeriodEnd = nil
	}
	return s.WriteEntitlement(ctx, upd)
}

func (s *Service) applyInvoiceEvent(ctx context.Context, inv *stripe.Invoice, failed bool) error {
	customer := customerID(inv.Customer)
	if customer == "" {
		return skip("no customer on invoice")
	}
	userID, err := s.repo.FindUserIDByCustomer(ctx, customer)
	if err != nil {
		if isNotFound(err) {
			return skip("no user mapping")
		}
		return fmt.Errorf("lookup customer link: %w", err)
	}

	upd := EntitlementUpdate{
		UserID:           userID,
		Status:           models.BillingStatusActive,
		StripeCustomerID: strPtr(customer),
	}
	if failed {
		upd.Status = models.BillingStatusPastDue
	}
	if subID := subscriptionID(inv.Subscription); subID != "" {
		sub, err := s.gateway.GetSubscription(ctx, subID)
		if err != nil {
			s.metrics.gatewayError("get_subscription")
			return err
		}
		upd = updateFromSubscription(userID, customer, sub)
	}
	if failed {
		upd.ForceNotPremium = true
		upd.CurrentPeriodEnd = nil
	}
	return s.WriteEntitlement(ctx, upd)
}
