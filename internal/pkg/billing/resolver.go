package billing

import (
	"context"
	"fmt"
)

// ResolveContext joins viewer with their stored billing identifiers. A nil
// viewer yields (nil, nil); lookup failures are returned.
func (s *Service) ResolveContext(ctx context.Context, viewer *Viewer) (*Context, error) {
	if viewer == nil || viewer.UserID == 0 {
		return nil, nil
	}
	bc := &Context{UserID: viewer.UserID, Email: viewer.Email}

	ent, err := s.repo.GetEntitlement(ctx, viewer.UserID)
	switch {
	case err == nil:
		bc.StripeCustomerID = ent.StripeCustomerID
		bc.StripeSubscriptionID = ent.StripeSubscriptionID
		bc.IsPremium = ent.IsPremium
	case isNotFound(err):
	default:
		return nil, fmt.Errorf("load entitlement: %w", err)
	}

	if bc.StripeCustomerID == nil {
		link, err := s.repo.GetCustomerLink(ctx, viewer.UserID)
		switch {
		case err == nil:
			bc.StripeCustomerID = strPtr(link.StripeCustomerID)
		case isNotFound(err):
		default:
			return nil, fmt.Errorf("load customer link: %w", err)
		}
	}
	return bc, nil
}
