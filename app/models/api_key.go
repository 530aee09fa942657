package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// APIKey is the bearer credential a user presents to the JSON API.
// One row per user; reissuing overwrites the hash.
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"uniqueIndex" json:"user_id"`
	KeyHash    string     `gorm:"type:char(64);index;default:''" json:"-"`
	KeyPrefix  string     `gorm:"type:varchar(20);default:''" json:"key_prefix"`
	LastUsedAt *time.Time `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const apiKeyPrefix = "smk_"

// IsActive reports whether the key can still authenticate requests.
func (k *APIKey) IsActive() bool {
	return k != nil && k.KeyHash != "" && k.RevokedAt == nil
}

// Issue generates a new secret, stores its hash on the struct and returns the raw value.
// Callers must persist the struct afterwards.
func (k *APIKey) Issue() (string, error) {
	rawKey, prefix, hash, err := generateAPIKeyMaterial()
	if err != nil {
		return "", err
	}
	k.KeyHash = hash
	k.KeyPrefix = prefix
	k.RevokedAt = nil
	k.LastUsedAt = nil
	return rawKey, nil
}

// Revoke clears the stored hash without deleting the record.
func (k *APIKey) Revoke() {
	k.KeyHash = ""
	k.KeyPrefix = ""
	now := time.Now()
	k.RevokedAt = &now
	k.LastUsedAt = nil
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

func generateAPIKeyMaterial() (string, string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", err
	}
	encoded := apiKeyEncoding.EncodeToString(b)
	encoded = strings.ToLower(encoded)
	rawKey := apiKeyPrefix + encoded
	if len(rawKey) < 12 {
		return "", "", "", fmt.Errorf("api key generation failed: key too short")
	}
	prefix := rawKey[:min(len(rawKey), 16)]
	hash := HashAPIKey(rawKey)
	return rawKey, prefix, hash, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
