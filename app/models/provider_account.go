package models

import "time"

const PROVIDER_GOOGLE = "google"

// ProviderAccount links an external OAuth identity to a marketplace user.
type ProviderAccount struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index" json:"user_id"`
	Provider       string     `gorm:"index:provider_uid,unique;type:varchar(50)" json:"provider"`
	ProviderUserID string     `gorm:"index:provider_uid,unique;type:varchar(191)" json:"provider_user_id"`
	Email          string     `gorm:"type:varchar(200);default:''" json:"email"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	ExpiresAt      *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Refresh copies fresh token data from a provider callback.
func (pa *ProviderAccount) Refresh(email, accessToken, refreshToken string, expiresAt time.Time) {
	if email != "" {
		pa.Email = email
	}
	pa.AccessToken = accessToken
	if refreshToken != "" {
		pa.RefreshToken = refreshToken
	}
	if !expiresAt.IsZero() {
		pa.ExpiresAt = &expiresAt
	} else {
		pa.ExpiresAt = nil
	}
}
