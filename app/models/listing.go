package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LISTING_STATUS_ACTIVE   = "active"
	LISTING_STATUS_SOLD     = "sold"
	LISTING_STATUS_ARCHIVED = "archived"
)

// Materials a listing can be filed under.
var Materials = []string{"metal", "plastic", "paper", "glass", "wood", "textile", "electronics", "rubber", "other"}

type Listing struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         string         `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	SellerID     uint           `gorm:"not null;index" json:"seller_id"`
	Seller       User           `gorm:"foreignKey:SellerID" json:"-" validate:"-"`
	Title        string         `gorm:"type:varchar(160);not null" json:"title" validate:"required,min=3,max=160"`
	Description  string         `gorm:"type:text" json:"description" validate:"max=5000"`
	Material     string         `gorm:"type:varchar(40);not null;index" json:"material" validate:"required,oneof=metal plastic paper glass wood textile electronics rubber other"`
	Quantity     float64        `gorm:"not null;default:0" json:"quantity" validate:"gt=0"`
	Unit         string         `gorm:"type:varchar(10);not null;default:'kg'" json:"unit" validate:"required,oneof=kg t lb pcs m3"`
	PriceCents   int64          `gorm:"not null;default:0" json:"price_cents" validate:"gte=0"`
	Currency     string         `gorm:"type:char(3);not null;default:'EUR'" json:"currency" validate:"required,len=3"`
	City         string         `gorm:"type:varchar(120);index" json:"city" validate:"max=120"`
	ContactPhone string         `gorm:"type:varchar(40);default:''" json:"-" validate:"max=40"`
	ContactEmail string         `gorm:"type:varchar(200);default:''" json:"-" validate:"omitempty,email,max=200"`
	Status       string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status" validate:"oneof=active sold archived"`
	ViewCount    uint64         `gorm:"not null;default:0" json:"view_count"`
	Photos       []ListingPhoto `gorm:"foreignKey:ListingID" json:"photos,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == "" {
		l.UUID = uuid.New().String()
	}
	return nil
}

func (l *Listing) Validate() error {
	return validator.New().Struct(l)
}

// IsOwnedBy reports whether userID is the seller.
func (l *Listing) IsOwnedBy(userID uint) bool {
	return l != nil && userID != 0 && l.SellerID == userID
}

// IsOpen reports whether the listing still accepts offers.
func (l *Listing) IsOpen() bool {
	return l.Status == LISTING_STATUS_ACTIVE
}

// PriceLabel renders the unit price for templates, e.g. "12.50 EUR / kg".
func (l *Listing) PriceLabel() string {
	return fmt.Sprintf("%d.%02d %s / %s", l.PriceCents/100, l.PriceCents%100, l.Currency, l.Unit)
}

type ListingPhoto struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"not null;index" json:"listing_id"`
	ObjectKey string    `gorm:"type:varchar(255);not null" json:"-"`
	ThumbKey  string    `gorm:"type:varchar(255);not null" json:"-"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
