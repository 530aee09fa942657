package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
)

// HandleOAuthBegin redirects to the provider consent screen.
func (ctl *Controller) HandleOAuthBegin(c *fiber.Ctx) error {
	if !ctl.OAuthEnabled {
		return redirectError(c, "/login", "Google login is not available.")
	}
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in
func (ctl *Controller) HandleOAuthCallback(c *fiber.Ctx) error {
	if !ctl.OAuthEnabled {
		return redirectError(c, "/login", "Google login is not available.")
	}
	gu, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		ctl.log.Warn().Err(err).Msg("oauth callback failed")
		return redirectError(c, "/login", "Google login failed. Please try again.")
	}
	user, err := ctl.linkOAuthUser(c, gu)
	if err != nil {
		ctl.log.Error().Err(err).Str("provider", gu.Provider).Msg("oauth link failed")
		return redirectError(c, "/login", "Google login failed. Please try again.")
	}
	if user.Status == models.STATUS_DISABLED {
		return redirectError(c, "/login", "This account has been disabled.")
	}
	if err := ctl.Sessions.Login(c, user.ID, user.Name); err != nil {
		return redirectError(c, "/login", loginFailed)
	}
	if err := ctl.Users.TouchLastLogin(c.UserContext(), user.ID); err != nil {
		ctl.log.Warn().Err(err).Uint("user_id", user.ID).Msg("touch last login failed")
	}
	return redirectSuccess(c, "/", "Welcome, "+user.Name+"!")
}

// linkOAuthUser finds the user behind a provider identity, linking by email
// or creating an account on first login. Provider emails count as confirmed.
func (ctl *Controller) linkOAuthUser(c *fiber.Ctx, gu goth.User) (*models.User, error) {
	ctx := c.UserContext()
	pa, err := ctl.Users.GetProviderAccount(ctx, gu.Provider, gu.UserID)
	switch {
	case err == nil:
		pa.Refresh(gu.Email, gu.AccessToken, gu.RefreshToken, gu.ExpiresAt)
		if err := ctl.Users.SaveProviderAccount(ctx, pa); err != nil {
			return nil, err
		}
		return ctl.Users.GetByID(ctx, pa.UserID)
	case !repository.IsNotFound(err):
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" {
		return nil, fmt.Errorf("provider returned no email")
	}
	user, err := ctl.Users.GetByEmail(ctx, email)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}
	if user == nil {
		placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
		hash, err := models.HashPassword(placeholder)
		if err != nil {
			return nil, err
		}
		user = &models.User{
			Name:      firstNonEmpty(gu.Name, gu.NickName, email),
			Email:     email,
			Password:  hash,
			AvatarURL: gu.AvatarURL,
			Role:      models.ROLE_USER,
		}
		user.ConfirmEmail(time.Now())
		if err := ctl.Users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	} else if !user.IsEmailConfirmed() {
		user.ConfirmEmail(time.Now())
		if err := ctl.Users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	pa = &models.ProviderAccount{UserID: user.ID, Provider: gu.Provider, ProviderUserID: gu.UserID}
	pa.Refresh(email, gu.AccessToken, gu.RefreshToken, gu.ExpiresAt)
	if err := ctl.Users.SaveProviderAccount(ctx, pa); err != nil {
		return nil, fmt.Errorf("link provider: %w", err)
	}
	return user, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "User"
}
