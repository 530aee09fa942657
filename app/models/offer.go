package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OFFER_STATUS_PENDING   = "pending"
	OFFER_STATUS_ACCEPTED  = "accepted"
	OFFER_STATUS_REJECTED  = "rejected"
	OFFER_STATUS_WITHDRAWN = "withdrawn"
)

type Offer struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ListingID   uint           `gorm:"not null;index" json:"listing_id"`
	Listing     Listing        `gorm:"foreignKey:ListingID" json:"-" validate:"-"`
	BuyerID     uint           `gorm:"not null;index" json:"buyer_id"`
	Buyer       User           `gorm:"foreignKey:BuyerID" json:"-" validate:"-"`
	AmountCents int64          `gorm:"not null" json:"amount_cents" validate:"gt=0"`
	Quantity    float64        `gorm:"not null;default:0" json:"quantity" validate:"gte=0"`
	Message     string         `gorm:"type:text" json:"message" validate:"max=2000"`
	Status      string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Offer) IsPending() bool {
	return o.Status == OFFER_STATUS_PENDING
}
