package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/marketplace"
)

// partialFailure flashes that the main action succeeded but a later step did not.
func (ctl *Controller) partialFailure(c *fiber.Ctx, to, done string, step *marketplace.StepError) error {
	ctl.log.Error().Err(step.Err).Str("step", step.Step).Str("path", c.Path()).Msg("follow-up step failed")
	msg := fmt.Sprintf("%s, but the %s step failed. Please check back later.", done, step.Step)
	return flash.WithInfo(c, fiber.Map{"type": "info", "message": msg}).Redirect(to, fiber.StatusSeeOther)
}

func (ctl *Controller) HandleOfferSubmit(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	back := "/listings/" + uuid
	amount, err := parseCents(c.FormValue("amount"))
	if err != nil || amount <= 0 {
		return redirectError(c, back, "Please enter your offer like 12.50.")
	}
	in := marketplace.OfferInput{
		AmountCents: amount,
		Message:     c.FormValue("message"),
	}
	if q := c.FormValue("quantity"); q != "" {
		qty, err := strconv.ParseFloat(strings.ReplaceAll(q, ",", "."), 64)
		if err != nil || qty < 0 {
			return redirectError(c, back, "Please enter a valid quantity.")
		}
		in.Quantity = qty
	}

	_, err = ctl.Market.SubmitOffer(c.UserContext(), currentUserID(c), uuid, in)
	var step *marketplace.StepError
	switch {
	case errors.As(err, &step):
		return ctl.partialFailure(c, "/offers/sent", "Your offer was saved", step)
	case err != nil:
		return ctl.marketError(c, back, err)
	}
	return redirectSuccess(c, "/offers/sent", "Your offer was sent to the seller.")
}

// HandleOffersReceived lists offers on the seller's listings.
func (ctl *Controller) HandleOffersReceived(c *fiber.Ctx) error {
	offers, err := ctl.Market.ReceivedOffers(c.UserContext(), currentUserID(c), pageParam(c))
	if err != nil {
		return ctl.marketError(c, "/", err)
	}
	return ctl.render(c, "offers/received", "Received offers", fiber.Map{"Offers": offers})
}

func (ctl *Controller) HandleOffersSent(c *fiber.Ctx) error {
	offers, err := ctl.Market.SentOffers(c.UserContext(), currentUserID(c), pageParam(c))
	if err != nil {
		return ctl.marketError(c, "/", err)
	}
	return ctl.render(c, "offers/sent", "Sent offers", fiber.Map{"Offers": offers})
}

func (ctl *Controller) HandleOfferAccept(c *fiber.Ctx) error {
	return ctl.respondToOffer(c, true)
}

func (ctl *Controller) HandleOfferReject(c *fiber.Ctx) error {
	return ctl.respondToOffer(c, false)
}

func (ctl *Controller) respondToOffer(c *fiber.Ctx, accept bool) error {
	id, ok := paramID(c, "id")
	if !ok {
		return ctl.HandleNotFound(c)
	}
	if err := ctl.Market.RespondToOffer(c.UserContext(), currentUserID(c), id, accept); err != nil {
		return ctl.marketError(c, "/offers", err)
	}
	if accept {
		return redirectSuccess(c, "/offers", "Offer accepted. The buyer has been notified.")
	}
	return redirectSuccess(c, "/offers", "Offer rejected.")
}

func (ctl *Controller) HandleOfferWithdraw(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return ctl.HandleNotFound(c)
	}
	if err := ctl.Market.WithdrawOffer(c.UserContext(), currentUserID(c), id); err != nil {
		return ctl.marketError(c, "/offers/sent", err)
	}
	return redirectSuccess(c, "/offers/sent", "Offer withdrawn.")
}
