package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/billing"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/entitlements"
)

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID         uint   `json:"user_id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
	IsLoggedIn     bool   `json:"is_logged_in"`
	IsPremium      bool   `json:"is_premium"`
}

// Plan maps the premium flag to a plan.
func (u UserContext) Plan() entitlements.Plan {
	return entitlements.PlanFor(u.IsPremium)
}

// Allows reports whether the user's plan grants feature.
func (u UserContext) Allows(feature entitlements.Feature) bool {
	return entitlements.Allows(u.Plan(), feature)
}

// Viewer returns the billing viewer, or nil for guests.
func (u UserContext) Viewer() *billing.Viewer {
	if !u.IsLoggedIn || u.UserID == 0 {
		return nil
	}
	return &billing.Viewer{UserID: u.UserID, Email: u.Email, EmailConfirmed: u.EmailConfirmed}
}

// Set stores uc on the request along with the flat compatibility locals.
func Set(c *fiber.Ctx, uc UserContext) {
	c.Locals(LocalsKey, uc)
	c.Locals(KeyFromProtected, uc.IsLoggedIn)
	c.Locals(KeyIsPremium, uc.IsPremium)
	if uc.IsLoggedIn {
		c.Locals(KeyUserID, uc.UserID)
		c.Locals(KeyUsername, uc.Username)
	}
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if uc, ok := c.Locals(LocalsKey).(UserContext); ok {
		return uc
	}
	return UserContext{}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}
