package entitlements

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Feature names a capability that may be gated behind a plan.
type Feature string

const (
	FeatureBrowse         Feature = "browse"
	FeatureCreateListing  Feature = "create_listing"
	FeatureSendOffer      Feature = "send_offer"
	FeatureViewOffers     Feature = "view_offers"
	FeatureMessaging      Feature = "messaging"
	FeatureRevealContacts Feature = "reveal_contacts"
)

var premiumOnly = map[Feature]bool{
	FeatureViewOffers:     true,
	FeatureMessaging:      true,
	FeatureRevealContacts: true,
}

// PlanFor maps the persisted premium flag to a plan.
func PlanFor(isPremium bool) Plan {
	if isPremium {
		return PlanPremium
	}
	return PlanFree
}

// Allows reports whether plan grants feature.
func Allows(plan Plan, feature Feature) bool {
	if !premiumOnly[feature] {
		return true
	}
	return plan == PlanPremium
}
