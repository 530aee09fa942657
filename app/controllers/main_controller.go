package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/marketplace"
)

const homeFeedSize = 6

// HandleHome shows the newest listings and, for logged-in users, what the
// sellers they follow posted.
func (ctl *Controller) HandleHome(c *fiber.Ctx) error {
	ctx, uid := c.UserContext(), currentUserID(c)
	res, err := ctl.Market.SearchListings(ctx, marketplace.Search{Page: 1})
	if err != nil {
		ctl.log.Error().Err(err).Msg("home listings failed")
		res = &marketplace.SearchResult{Page: 1}
	}
	var feed []models.Listing
	if uid != 0 {
		if feed, err = ctl.Market.FollowingFeed(ctx, uid); err != nil {
			ctl.log.Warn().Err(err).Msg("home feed failed")
		}
		if len(feed) > homeFeedSize {
			feed = feed[:homeFeedSize]
		}
	}
	data := fiber.Map{
		"Latest":    res.Listings,
		"Feed":      feed,
		"Materials": models.Materials,
	}
	if ctl.Stats != nil {
		data["Stats"] = ctl.Stats.Get(ctx)
	}
	return ctl.render(c, "home", "Scrap materials marketplace", data)
}
