package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

// WriteEntitlement upserts the premium state of a user. Every field is
// overwritten; the last write wins.
func (s *Service) WriteEntitlement(ctx context.Context, upd EntitlementUpdate) error {
	if upd.UserID == 0 {
		return errors.New("user_id is required")
	}
	status := normalizeStatus(upd.Status)
	premium := !upd.ForceNotPremium && IsPremiumStatus(status)

	ent := &models.UserEntitlement{
		UserID:               upd.UserID,
		IsPremium:            premium,
		Status:               status,
		StripeCustomerID:     upd.StripeCustomerID,
		StripeSubscriptionID: upd.StripeSubscriptionID,
		CurrentPeriodEnd:     upd.CurrentPeriodEnd,
		PremiumUntil:         upd.CurrentPeriodEnd,
		UpdatedAt:            s.now(),
	}
	if err := s.repo.UpsertEntitlement(ctx, ent); err != nil {
		return fmt.Errorf("upsert entitlement: %w", err)
	}
	s.metrics.entitlementWrite(premium)
	s.log.Info().
		Str("user", redactUser(upd.UserID)).
		Str("status", status).
		Bool("premium", premium).
		Msg("entitlement written")
	return nil
}

// updateFromSubscription builds an update from a freshly fetched subscription.
func updateFromSubscription(userID uint, customer string, sub *stripe.Subscription) EntitlementUpdate {
	upd := EntitlementUpdate{
		UserID:               userID,
		Status:               string(sub.Status),
		CurrentPeriodEnd:     unixTime(sub.CurrentPeriodEnd),
		StripeCustomerID:     strPtr(customer),
		StripeSubscriptionID: strPtr(sub.ID),
	}
	if upd.StripeCustomerID == nil {
		upd.StripeCustomerID = strPtr(customerID(sub.Customer))
	}
	return upd
}
