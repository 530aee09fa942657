package models

import "time"

// Conversation is the message thread between a buyer and the seller of a listing.
type Conversation struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ListingID     uint       `gorm:"not null;uniqueIndex:ux_conversations_listing_buyer,priority:1" json:"listing_id"`
	Listing       Listing    `gorm:"foreignKey:ListingID" json:"-"`
	BuyerID       uint       `gorm:"not null;uniqueIndex:ux_conversations_listing_buyer,priority:2;index" json:"buyer_id"`
	SellerID      uint       `gorm:"not null;index" json:"seller_id"`
	LastMessageAt *time.Time `gorm:"type:timestamp;default:null;index" json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// HasParticipant reports whether userID is the buyer or the seller.
func (c *Conversation) HasParticipant(userID uint) bool {
	return userID != 0 && (c.BuyerID == userID || c.SellerID == userID)
}

// Counterpart returns the other participant.
func (c *Conversation) Counterpart(userID uint) uint {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint       `gorm:"not null;index" json:"sender_id"`
	Body           string     `gorm:"type:text;not null" json:"body" validate:"required,max=4000"`
	ReadAt         *time.Time `gorm:"type:timestamp;default:null" json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
