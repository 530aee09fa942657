package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
)

const flashAPIKey = "new_api_key"

func (ctl *Controller) HandleSettings(c *fiber.Ctx) error {
	key, err := ctl.Users.GetAPIKey(c.UserContext(), currentUserID(c))
	if err != nil && !repository.IsNotFound(err) {
		ctl.log.Error().Err(err).Msg("load api key failed")
	}
	if key != nil && !key.IsActive() {
		key = nil
	}
	// the raw key is shown exactly once, right after it was issued
	raw := ctl.Sessions.Value(c, flashAPIKey)
	if raw != "" {
		if err := ctl.Sessions.SetValue(c, flashAPIKey, ""); err != nil {
			ctl.log.Warn().Err(err).Msg("clear issued api key failed")
		}
	}
	return ctl.render(c, "settings", "Settings", fiber.Map{"APIKey": key, "NewKey": raw})
}

// HandleAPIKeyIssue creates or replaces the user's API key.
func (ctl *Controller) HandleAPIKeyIssue(c *fiber.Ctx) error {
	ctx, uid := c.UserContext(), currentUserID(c)
	key, err := ctl.Users.GetAPIKey(ctx, uid)
	if err != nil {
		if !repository.IsNotFound(err) {
			ctl.log.Error().Err(err).Msg("load api key failed")
			return redirectError(c, "/settings", "The API key could not be created.")
		}
		key = &models.APIKey{UserID: uid}
	}
	raw, err := key.Issue()
	if err == nil {
		err = ctl.Users.SaveAPIKey(ctx, key)
	}
	if err == nil {
		err = ctl.Sessions.SetValue(c, flashAPIKey, raw)
	}
	if err != nil {
		ctl.log.Error().Err(err).Msg("issue api key failed")
		return redirectError(c, "/settings", "The API key could not be created.")
	}
	return redirectSuccess(c, "/settings", "New API key created. Copy it now, it will not be shown again.")
}

func (ctl *Controller) HandleAPIKeyRevoke(c *fiber.Ctx) error {
	ctx := c.UserContext()
	key, err := ctl.Users.GetAPIKey(ctx, currentUserID(c))
	if err != nil {
		return redirectError(c, "/settings", "There is no API key to revoke.")
	}
	key.Revoke()
	if err := ctl.Users.SaveAPIKey(ctx, key); err != nil {
		ctl.log.Error().Err(err).Msg("revoke api key failed")
		return redirectError(c, "/settings", "The API key could not be revoked.")
	}
	return redirectSuccess(c, "/settings", "API key revoked.")
}
