package models

import (
	"time"
)

const (
	NOTIFICATION_OFFER         = "offer"
	NOTIFICATION_OFFER_UPDATE  = "offer_update"
	NOTIFICATION_MESSAGE       = "message"
	NOTIFICATION_FOLLOW        = "follow"
	NOTIFICATION_FOLLOWED_POST = "followed_listing"
	NOTIFICATION_SYSTEM        = "system"
)

type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index" json:"user_id"`
	Type      string     `gorm:"type:varchar(50)" json:"type" validate:"oneof=offer offer_update message follow followed_listing system"`
	Title     string     `gorm:"type:varchar(200)" json:"title"`
	Content   string     `gorm:"type:text" json:"content"`
	Link      string     `gorm:"type:varchar(255);default:''" json:"link"`
	ReadAt    *time.Time `gorm:"type:timestamp;default:null;index" json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
