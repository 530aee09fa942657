package billing

import (
	"context"
)

// ReadEntitlement answers whether viewer is a paying subscriber. It fails
// closed: a missing row, a query error or a panic all read as not premium.
func (s *Service) ReadEntitlement(ctx context.Context, viewer *Viewer) (view EntitlementView) {
	if viewer == nil || viewer.UserID == 0 {
		return EntitlementView{}
	}
	uid := viewer.UserID
	view = EntitlementView{UserID: &uid}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("user", redactUser(uid)).Msg("entitlement read panicked")
			view = EntitlementView{UserID: &uid}
		}
	}()

	ent, err := s.repo.GetEntitlement(ctx, uid)
	if err != nil {
		if !isNotFound(err) {
			s.log.Warn().Err(err).Str("user", redactUser(uid)).Msg("entitlement read failed")
		}
		return view
	}
	view.IsPremium = ent.IsPremium
	return view
}

// IsPremium is a shorthand for ReadEntitlement(...).IsPremium.
func (s *Service) IsPremium(ctx context.Context, userID uint) bool {
	if userID == 0 {
		return false
	}
	return s.ReadEntitlement(ctx, &Viewer{UserID: userID}).IsPremium
}
