package controllers

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/marketplace"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/photostore"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/upload"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/viewmodel"
)

var listingUnits = []string{"kg", "t", "lb", "pcs", "m3"}

// listingForm is ListingInput plus the price as typed by the user.
type listingForm struct {
	marketplace.ListingInput
	Price string
}

func (ctl *Controller) HandleListingIndex(c *fiber.Ctx) error {
	q := marketplace.Search{
		Query:    strings.TrimSpace(c.Query("q")),
		Material: c.Query("material"),
		City:     strings.TrimSpace(c.Query("city")),
		Page:     pageParam(c),
	}
	res, err := ctl.Market.SearchListings(c.UserContext(), q)
	if err != nil {
		ctl.log.Error().Err(err).Msg("search listings failed")
		return ctl.renderStatus(c, fiber.StatusInternalServerError, "Error", "Listings could not be loaded.")
	}
	return ctl.render(c, "listings/index", "Listings", fiber.Map{
		"Result":    res,
		"Query":     q,
		"Materials": models.Materials,
		"Pager":     viewmodel.Pager{Page: res.Page, Pages: res.Pages},
	})
}

func (ctl *Controller) HandleListingShow(c *fiber.Ctx) error {
	d, err := ctl.Market.GetListing(c.UserContext(), currentUserID(c), c.Params("uuid"))
	if err != nil {
		return ctl.marketError(c, "/listings", err)
	}
	return ctl.render(c, "listings/show", d.Listing.Title, fiber.Map{"Detail": d})
}

func (ctl *Controller) HandleListingNew(c *fiber.Ctx) error {
	return ctl.renderListingForm(c, "New listing", "/listings", listingForm{
		ListingInput: marketplace.ListingInput{Unit: "kg", Currency: "EUR"},
	})
}

func (ctl *Controller) HandleListingCreate(c *fiber.Ctx) error {
	in, problem := parseListingForm(c)
	if problem != "" {
		return redirectError(c, "/listings/new", problem)
	}
	l, err := ctl.Market.CreateListing(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return ctl.marketError(c, "/listings/new", err)
	}
	return redirectSuccess(c, "/listings/"+l.UUID, "Your listing is online.")
}

func (ctl *Controller) HandleListingEdit(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	d, err := ctl.Market.GetListing(c.UserContext(), currentUserID(c), uuid)
	if err != nil {
		return ctl.marketError(c, "/listings", err)
	}
	if !d.IsOwner {
		return ctl.marketError(c, "/listings/"+uuid, marketplace.ErrForbidden)
	}
	l := d.Listing
	return ctl.renderListingForm(c, "Edit listing", "/listings/"+uuid, listingForm{
		ListingInput: marketplace.ListingInput{
			Title:        l.Title,
			Description:  l.Description,
			Material:     l.Material,
			Quantity:     l.Quantity,
			Unit:         l.Unit,
			PriceCents:   l.PriceCents,
			Currency:     l.Currency,
			City:         l.City,
			ContactPhone: l.ContactPhone,
			ContactEmail: l.ContactEmail,
		},
		Price: formatCents(l.PriceCents),
	})
}

func (ctl *Controller) HandleListingUpdate(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	in, problem := parseListingForm(c)
	if problem != "" {
		return redirectError(c, "/listings/"+uuid+"/edit", problem)
	}
	if _, err := ctl.Market.UpdateListing(c.UserContext(), currentUserID(c), uuid, in); err != nil {
		return ctl.marketError(c, "/listings/"+uuid+"/edit", err)
	}
	return redirectSuccess(c, "/listings/"+uuid, "Listing updated.")
}

func (ctl *Controller) HandleListingSold(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if err := ctl.Market.MarkSold(c.UserContext(), currentUserID(c), uuid); err != nil {
		return ctl.marketError(c, "/listings/"+uuid, err)
	}
	return redirectSuccess(c, "/listings/"+uuid, "Listing marked as sold.")
}

func (ctl *Controller) HandleListingArchive(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if err := ctl.Market.Archive(c.UserContext(), currentUserID(c), uuid); err != nil {
		return ctl.marketError(c, "/listings/"+uuid, err)
	}
	return redirectSuccess(c, "/listings", "Listing archived.")
}

// HandleListingPhoto accepts one JPEG or PNG for an owned listing.
func (ctl *Controller) HandleListingPhoto(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	back := "/listings/" + uuid
	fh, err := c.FormFile("photo")
	if err != nil {
		return redirectError(c, back, "Please choose a photo.")
	}
	if fh.Size > photostore.MaxUploadBytes {
		return redirectError(c, back, "The photo is larger than 10 MB.")
	}
	f, err := fh.Open()
	if err != nil {
		return redirectError(c, back, "The photo could not be read.")
	}
	defer f.Close()

	head := make([]byte, upload.SniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return redirectError(c, back, "The photo could not be read.")
	}
	head = head[:n]
	if _, err := upload.ValidatePhoto(fh.Filename, head); err != nil {
		return redirectError(c, back, "Only JPEG and PNG photos are supported.")
	}

	body := io.MultiReader(bytes.NewReader(head), f)
	if _, err := ctl.Market.AddPhoto(c.UserContext(), currentUserID(c), uuid, body); err != nil {
		if errors.Is(err, photostore.ErrUnsupportedFormat) {
			return redirectError(c, back, "Only JPEG and PNG photos are supported.")
		}
		return ctl.marketError(c, back, err)
	}
	return redirectSuccess(c, back, "Photo added.")
}

func (ctl *Controller) renderListingForm(c *fiber.Ctx, title, action string, form listingForm) error {
	return ctl.render(c, "listings/form", title, fiber.Map{
		"Form":      form,
		"Action":    action,
		"Materials": models.Materials,
		"Units":     listingUnits,
	})
}

// parseListingForm returns the input or a message for the user.
func parseListingForm(c *fiber.Ctx) (marketplace.ListingInput, string) {
	var in marketplace.ListingInput
	if err := c.BodyParser(&in); err != nil {
		return in, "The form could not be read."
	}
	cents, err := parseCents(c.FormValue("price"))
	if err != nil {
		return in, "Please enter the price like 12.50."
	}
	in.PriceCents = cents
	return in, ""
}
