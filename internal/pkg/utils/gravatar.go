package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// GetGravatarURL generates a Gravatar URL for the given email address
// Default size is 80px if not specified
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = 80
	}
	hash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}

// AvatarURL prefers the stored avatar and falls back to Gravatar.
func AvatarURL(avatarURL, email string, size int) string {
	if avatarURL != "" {
		return avatarURL
	}
	return GetGravatarURL(email, size)
}
