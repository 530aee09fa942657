package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/session"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/usercontext"
)

// Entitlements answers the premium question for a user.
type Entitlements interface {
	IsPremium(ctx context.Context, userID uint) bool
}

// UserContext resolves the session user for every request. Premium state is
// read from the entitlement store on each request so webhook updates apply
// without a new login.
func UserContext(store *session.Store, users repository.UserRepository, ent Entitlements, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// goth keeps its own session on /auth/*; webhooks carry no session
		if strings.HasPrefix(c.Path(), "/auth/") || strings.HasPrefix(c.Path(), "/webhooks/") {
			return c.Next()
		}

		userID := store.UserID(c)
		if userID == 0 {
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil || user.Status == models.STATUS_DISABLED {
			if err != nil && !repository.IsNotFound(err) {
				log.Warn().Err(err).Uint("user_id", userID).Msg("load session user failed")
			}
			_ = store.Logout(c)
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}

		usercontext.Set(c, fromUser(c.UserContext(), user, ent))
		return c.Next()
	}
}

func fromUser(ctx context.Context, user *models.User, ent Entitlements) usercontext.UserContext {
	return usercontext.UserContext{
		UserID:         user.ID,
		Username:       user.Name,
		Email:          user.Email,
		EmailConfirmed: user.EmailConfirmedAt != nil,
		IsLoggedIn:     true,
		IsPremium:      ent != nil && ent.IsPremium(ctx, user.ID),
	}
}
