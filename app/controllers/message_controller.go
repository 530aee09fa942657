package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/marketplace"
)

func (ctl *Controller) HandleMessagesIndex(c *fiber.Ctx) error {
	convs, err := ctl.Market.Conversations(c.UserContext(), currentUserID(c), pageParam(c))
	if err != nil {
		return ctl.marketError(c, "/", err)
	}
	return ctl.render(c, "messages/index", "Messages", fiber.Map{"Conversations": convs})
}

func (ctl *Controller) HandleMessagesThread(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return ctl.HandleNotFound(c)
	}
	conv, msgs, err := ctl.Market.Thread(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return ctl.marketError(c, "/messages", err)
	}
	return ctl.render(c, "messages/thread", "Conversation", fiber.Map{
		"Conversation": conv,
		"Messages":     msgs,
		"Me":           currentUserID(c),
	})
}

// HandleMessagesOpen starts or resumes the conversation about a listing.
func (ctl *Controller) HandleMessagesOpen(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	conv, err := ctl.Market.OpenConversation(c.UserContext(), currentUserID(c), uuid)
	if err != nil {
		return ctl.marketError(c, "/listings/"+uuid, err)
	}
	return c.Redirect(fmt.Sprintf("/messages/%d", conv.ID), fiber.StatusSeeOther)
}

func (ctl *Controller) HandleMessagesSend(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return ctl.HandleNotFound(c)
	}
	back := fmt.Sprintf("/messages/%d", id)
	_, err := ctl.Market.SendMessage(c.UserContext(), currentUserID(c), id, c.FormValue("body"))
	var step *marketplace.StepError
	switch {
	case errors.As(err, &step):
		return ctl.partialFailure(c, back, "Your message was sent", step)
	case err != nil:
		return ctl.marketError(c, back, err)
	}
	return c.Redirect(back, fiber.StatusSeeOther)
}
