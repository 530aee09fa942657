package billing

import (
	"time"

	"github.com/stripe/stripe-go/v76"
)

// Viewer is the authenticated user a billing operation acts for.
type Viewer struct {
	UserID         uint
	Email          string
	EmailConfirmed bool
}

// EntitlementView is the answer to "is this viewer a paying subscriber".
type EntitlementView struct {
	UserID    *uint `json:"userId"`
	IsPremium bool  `json:"isPremium"`
}

// Context joins a viewer with their billing-platform identifiers.
type Context struct {
	UserID               uint
	Email                string
	StripeCustomerID     *string
	StripeSubscriptionID *string
	IsPremium            bool
}

// Snapshot is the billing-platform state shown on the billing page.
type Snapshot struct {
	Subscription  *stripe.Subscription
	PaymentMethod *stripe.PaymentMethod
	Invoices      []*stripe.Invoice
}

// ResolvedCustomer is the outcome of the email fallback search. All fields are
// nil when nothing matched.
type ResolvedCustomer struct {
	StripeCustomerID     *string
	StripeSubscriptionID *string
	SubscriptionStatus   *string
}

// EntitlementUpdate is one write of a user's premium state.
type EntitlementUpdate struct {
	UserID               uint
	Status               string
	CurrentPeriodEnd     *time.Time
	StripeCustomerID     *string
	StripeSubscriptionID *string
	// ForceNotPremium revokes premium regardless of Status.
	ForceNotPremium bool
}

// CheckoutRequest carries what the gateway needs to open a hosted checkout.
type CheckoutRequest struct {
	UserID     uint
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// WebhookResult describes how an inbound event was handled.
type WebhookResult struct {
	EventID   string
	Type      string
	Duplicate bool
	// Outcome is one of processed, skipped, ignored or duplicate.
	Outcome string
	Reason  string
}

const (
	outcomeProcessed = "processed"
	outcomeSkipped   = "skipped"
	outcomeIgnored   = "ignored"
	outcomeDuplicate = "duplicate"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// BackfillOptions controls a reconciliation run over all users.
type BackfillOptions struct {
	DryRun    bool
	Limit     int
	BatchSize int
	// RPS caps billing-platform calls per second.
	RPS float64
}

// BackfillReport summarises a reconciliation run.
type BackfillReport struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
