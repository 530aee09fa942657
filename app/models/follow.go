package models

import "time"

type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:ux_follows_pair,priority:1" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:ux_follows_pair,priority:2;index" json:"followee_id"`
	Followee   User      `gorm:"foreignKey:FolloweeID" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type SavedListing struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_saved_listings_pair,priority:1" json:"user_id"`
	ListingID uint      `gorm:"not null;uniqueIndex:ux_saved_listings_pair,priority:2;index" json:"listing_id"`
	Listing   Listing   `gorm:"foreignKey:ListingID" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// DeviceToken is a push registration for a user's device.
type DeviceToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"token" validate:"required,max=255"`
	Platform  string    `gorm:"type:varchar(20);not null;default:'web'" json:"platform" validate:"oneof=web android ios"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
