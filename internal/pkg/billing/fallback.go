package billing

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v76"
)

// ResolveCustomerByEmail rediscovers a user's customer by searching the
// billing platform for email and ranking every subscription found. The winning
// customer is linked to userID.
func (s *Service) ResolveCustomerByEmail(ctx context.Context, userID uint, email string) (ResolvedCustomer, error) {
	res, err := s.findCustomerByEmail(ctx, email)
	if err != nil || res.StripeCustomerID == nil || userID == 0 {
		return res, err
	}
	if err := s.repo.UpsertCustomerLink(ctx, userID, *res.StripeCustomerID); err != nil {
		return res, err
	}
	s.log.Info().Str("user", redactUser(userID)).Str("customer", RedactID(*res.StripeCustomerID)).Msg("customer relinked by email")
	return res, nil
}

func (s *Service) findCustomerByEmail(ctx context.Context, email string) (ResolvedCustomer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return ResolvedCustomer{}, nil
	}
	if err := s.requireConfigured(); err != nil {
		return ResolvedCustomer{}, err
	}

	customers, err := s.gateway.SearchCustomersByEmail(ctx, email)
	if err != nil {
		s.metrics.gatewayError("search_customers")
		return ResolvedCustomer{}, err
	}

	var candidates []*stripe.Subscription
	for _, c := range customers {
		if c == nil || c.ID == "" || c.Deleted {
			continue
		}
		subs, err := s.gateway.ListSubscriptions(ctx, c.ID)
		if err != nil {
			s.metrics.gatewayError("list_subscriptions")
			return ResolvedCustomer{}, err
		}
		for _, sub := range subs {
			if sub == nil {
				continue
			}
			if customerID(sub.Customer) == "" {
				sub.Customer = &stripe.Customer{ID: c.ID}
			}
			candidates = append(candidates, sub)
		}
	}

	best := BestSubscription(candidates)
	if best == nil {
		return ResolvedCustomer{}, nil
	}
	status := string(best.Status)
	return ResolvedCustomer{
		StripeCustomerID:     strPtr(customerID(best.Customer)),
		StripeSubscriptionID: strPtr(best.ID),
		SubscriptionStatus:   &status,
	}, nil
}
