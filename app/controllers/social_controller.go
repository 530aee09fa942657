package controllers

import (
	"github.com/gofiber/fiber/v2"
)

func (ctl *Controller) HandleFollow(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return ctl.HandleNotFound(c)
	}
	back := backTo(c, "/following")
	if err := ctl.Market.Follow(c.UserContext(), currentUserID(c), id); err != nil {
		return ctl.marketError(c, back, err)
	}
	return redirectSuccess(c, back, "You now follow this seller.")
}

func (ctl *Controller) HandleUnfollow(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return ctl.HandleNotFound(c)
	}
	back := backTo(c, "/following")
	if err := ctl.Market.Unfollow(c.UserContext(), currentUserID(c), id); err != nil {
		return ctl.marketError(c, back, err)
	}
	return redirectSuccess(c, back, "You no longer follow this seller.")
}

// HandleFollowing shows followed sellers and their latest listings.
func (ctl *Controller) HandleFollowing(c *fiber.Ctx) error {
	ctx, uid := c.UserContext(), currentUserID(c)
	follows, err := ctl.Market.Following(ctx, uid)
	if err != nil {
		return ctl.marketError(c, "/", err)
	}
	feed, err := ctl.Market.FollowingFeed(ctx, uid)
	if err != nil {
		return ctl.marketError(c, "/", err)
	}
	return ctl.render(c, "following", "Following", fiber.Map{"Follows": follows, "Feed": feed})
}

func (ctl *Controller) HandleSave(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if err := ctl.Market.SaveListing(c.UserContext(), currentUserID(c), uuid); err != nil {
		return ctl.marketError(c, "/listings/"+uuid, err)
	}
	return redirectSuccess(c, "/listings/"+uuid, "Listing saved.")
}

func (ctl *Controller) HandleUnsave(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	back := backTo(c, "/saved")
	if err := ctl.Market.UnsaveListing(c.UserContext(), currentUserID(c), uuid); err != nil {
		return ctl.marketError(c, back, err)
	}
	return redirectSuccess(c, back, "Listing removed from your saved list.")
}

func (ctl *Controller) HandleSaved(c *fiber.Ctx) error {
	saved, err := ctl.Market.SavedListings(c.UserContext(), currentUserID(c))
	if err != nil {
		return ctl.marketError(c, "/", err)
	}
	return ctl.render(c, "saved", "Saved listings", fiber.Map{"Saved": saved})
}

func (ctl *Controller) HandleNotifications(c *fiber.Ctx) error {
	list, err := ctl.Market.Notifications(c.UserContext(), currentUserID(c))
	if err != nil {
		return ctl.marketError(c, "/", err)
	}
	return ctl.render(c, "notifications", "Notifications", fiber.Map{"Notifications": list})
}

// HandleNotificationRead marks one notification read and follows its link.
func (ctl *Controller) HandleNotificationRead(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return ctl.HandleNotFound(c)
	}
	if err := ctl.Market.MarkNotificationRead(c.UserContext(), currentUserID(c), id); err != nil {
		return ctl.marketError(c, "/notifications", err)
	}
	to := c.FormValue("next")
	if len(to) < 2 || to[0] != '/' || to[1] == '/' {
		to = "/notifications"
	}
	return c.Redirect(to, fiber.StatusSeeOther)
}

func (ctl *Controller) HandleNotificationsReadAll(c *fiber.Ctx) error {
	if err := ctl.Market.MarkAllNotificationsRead(c.UserContext(), currentUserID(c)); err != nil {
		return ctl.marketError(c, "/notifications", err)
	}
	return redirectSuccess(c, "/notifications", "All notifications marked as read.")
}
