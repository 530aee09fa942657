package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserValidatesAndHashes(t *testing.T) {
	u, err := CreateUser("Scrappy", "scrappy@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, STATUS_INACTIVE, u.Status)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.IsEmailConfirmed())

	_, err = CreateUser("x", "not-an-email", "secret123")
	assert.Error(t, err)
}

func TestUserConfirmEmail(t *testing.T) {
	u := &User{Status: STATUS_INACTIVE}
	require.NoError(t, u.GenerateActivationToken())
	require.NotEmpty(t, u.ActivationToken)

	u.ConfirmEmail(u.ActivationSentAt.Add(0))

	assert.True(t, u.IsActive())
	assert.True(t, u.IsEmailConfirmed())
	assert.Empty(t, u.ActivationToken)
}

func TestListingValidate(t *testing.T) {
	valid := Listing{Title: "Copper wire", Material: "metal", Quantity: 120, Unit: "kg", Currency: "EUR", Status: LISTING_STATUS_ACTIVE}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(l *Listing)
	}{
		{"short title", func(l *Listing) { l.Title = "Cu" }},
		{"unknown material", func(l *Listing) { l.Material = "uranium" }},
		{"zero quantity", func(l *Listing) { l.Quantity = 0 }},
		{"bad contact email", func(l *Listing) { l.ContactEmail = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid
			tt.mutate(&l)
			assert.Error(t, l.Validate())
		})
	}
}

func TestListingHelpers(t *testing.T) {
	l := &Listing{SellerID: 7, PriceCents: 1250, Currency: "EUR", Unit: "kg", Status: LISTING_STATUS_ACTIVE}

	assert.True(t, l.IsOwnedBy(7))
	assert.False(t, l.IsOwnedBy(8))
	assert.False(t, l.IsOwnedBy(0))
	assert.True(t, l.IsOpen())
	assert.Equal(t, "12.50 EUR / kg", l.PriceLabel())
}

func TestConversationParticipants(t *testing.T) {
	c := &Conversation{BuyerID: 1, SellerID: 2}

	assert.True(t, c.HasParticipant(1))
	assert.True(t, c.HasParticipant(2))
	assert.False(t, c.HasParticipant(3))
	assert.Equal(t, uint(2), c.Counterpart(1))
	assert.Equal(t, uint(1), c.Counterpart(2))
}

func TestProviderAccountRefreshKeepsRefreshToken(t *testing.T) {
	pa := &ProviderAccount{Provider: PROVIDER_GOOGLE, RefreshToken: "r1", Email: "old@scrap.example"}

	pa.Refresh("", "a2", "", time.Time{})

	assert.Equal(t, "a2", pa.AccessToken)
	assert.Equal(t, "r1", pa.RefreshToken)
	assert.Equal(t, "old@scrap.example", pa.Email)
	assert.Nil(t, pa.ExpiresAt)
}
