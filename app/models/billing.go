package models

import "time"

const (
	BillingStatusActive            = "active"
	BillingStatusTrialing          = "trialing"
	BillingStatusPastDue           = "past_due"
	BillingStatusUnpaid            = "unpaid"
	BillingStatusCanceled          = "canceled"
	BillingStatusIncompleteExpired = "incomplete_expired"
	BillingStatusUnknown           = "unknown"
)

// UserEntitlement is the persisted premium state of a user, derived from the
// billing platform. One row per user.
type UserEntitlement struct {
	UserID               uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	IsPremium            bool       `gorm:"not null;default:false;index" json:"is_premium"`
	Status               string     `gorm:"type:varchar(32);not null;default:'unknown'" json:"status"`
	StripeCustomerID     *string    `gorm:"type:varchar(191);default:null;index" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string    `gorm:"type:varchar(191);default:null" json:"stripe_subscription_id,omitempty"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	PremiumUntil         *time.Time `gorm:"type:timestamp;default:null" json:"premium_until,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (UserEntitlement) TableName() string { return "user_entitlements" }

// StripeCustomer links a user to a billing-platform customer.
type StripeCustomer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;uniqueIndex:ux_stripe_customers_user" json:"user_id"`
	StripeCustomerID string    `gorm:"type:varchar(191);not null;index" json:"stripe_customer_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StripeCustomer) TableName() string { return "stripe_customers" }

// StripeEvent is the idempotency ledger for processed webhook events.
type StripeEvent struct {
	ID        string    `gorm:"primaryKey;type:varchar(191)" json:"id"`
	Type      string    `gorm:"type:varchar(100);not null;index" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (StripeEvent) TableName() string { return "stripe_events" }
