package apiv1

import (
	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/marketplace"
)

type Error struct {
	Error string `json:"error"`
}

type Ok struct {
	Ok bool `json:"ok"`
}

type CheckoutRequest struct {
	PriceID string `json:"priceId"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type SetupIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type AttachPaymentMethodRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

type CancelResponse struct {
	Ok                bool `json:"ok"`
	CancelAtPeriodEnd bool `json:"cancelAtPeriodEnd"`
}

type ListingPage struct {
	Listings []models.Listing `json:"listings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// ListingDetail adds the contact fields the listing model keeps out of JSON.
type ListingDetail struct {
	Listing      *models.Listing         `json:"listing"`
	ContactPhone string                  `json:"contact_phone,omitempty"`
	ContactEmail string                  `json:"contact_email,omitempty"`
	ShowContacts bool                    `json:"show_contacts"`
	Photos       []marketplace.PhotoURLs `json:"photos"`
}

type DeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type UnreadCount struct {
	Count int64 `json:"count"`
}

type OfferPage struct {
	Offers []models.Offer `json:"offers"`
	Page   int            `json:"page"`
}
