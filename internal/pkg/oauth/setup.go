package oauth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/cache"
)

const ProviderGoogle = "google"

// Config holds the Google client and the redis server for OAuth state.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedisHost    string
	RedisPort    int
	RedisPass    string
	Secure       bool
}

// Enabled reports whether Google login is configured.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// CallbackURL is the redirect URI registered with Google.
func (c Config) CallbackURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/auth/google/callback"
}

// Setup registers the Google provider and keeps OAuth state in redis. It
// returns false and registers nothing when Google login is not configured.
func Setup(cfg Config) bool {
	if !cfg.Enabled() {
		return false
	}
	goth.UseProviders(google.New(cfg.ClientID, cfg.ClientSecret, cfg.CallbackURL(), "email", "profile"))

	gothfiber.SessionStore = session.New(session.Config{
		Storage: redisstorage.New(redisstorage.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPass,
			Database: cache.DBOAuth,
			Reset:    false,
		}),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.Secure,
		Expiration:     time.Hour,
	})
	return true
}
