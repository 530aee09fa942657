package apiv1

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/billing"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/marketplace"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/usercontext"
)

// Billing is the part of billing.Service the API exposes.
type Billing interface {
	StartCheckout(ctx context.Context, viewer *billing.Viewer, priceID string) (string, error)
	SyncCheckoutSession(ctx context.Context, viewer *billing.Viewer, sessionID string) error
	CreateSetupIntent(ctx context.Context, viewer *billing.Viewer) (string, error)
	AttachPaymentMethod(ctx context.Context, viewer *billing.Viewer, paymentMethodID string) error
	CancelSubscription(ctx context.Context, viewer *billing.Viewer) error
	ReadEntitlement(ctx context.Context, viewer *billing.Viewer) billing.EntitlementView
}

// Marketplace is the part of marketplace.Service the API exposes.
type Marketplace interface {
	SearchListings(ctx context.Context, q marketplace.Search) (*marketplace.SearchResult, error)
	GetListing(ctx context.Context, viewerID uint, uuid string) (*marketplace.ListingDetail, error)
	RegisterDevice(ctx context.Context, userID uint, token, platform string) (*models.DeviceToken, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	ReceivedOffers(ctx context.Context, sellerID uint, page int) ([]models.Offer, error)
}

// APIServer serves /api/v1.
type APIServer struct {
	billing Billing
	market  Marketplace
	log     zerolog.Logger
}

// NewAPIServer creates a new API server instance
func NewAPIServer(b Billing, m Marketplace, log zerolog.Logger) *APIServer {
	return &APIServer{billing: b, market: m, log: log.With().Str("component", "api").Logger()}
}

func (s *APIServer) billingError(c *fiber.Ctx, op string, err error) error {
	status, msg := billing.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		s.log.Error().Err(err).Str("op", op).Msg("billing request failed")
	}
	return c.Status(status).JSON(Error{Error: msg})
}

func (s *APIServer) marketError(c *fiber.Ctx, op string, err error) error {
	status, msg := marketplace.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		s.log.Error().Err(err).Str("op", op).Msg("marketplace request failed")
	}
	return c.Status(status).JSON(Error{Error: msg})
}

// PostBillingCheckout opens a hosted checkout for the bearer's account.
func (s *APIServer) PostBillingCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "invalid request body"})
		}
	}
	url, err := s.billing.StartCheckout(c.UserContext(), usercontext.GetUserContext(c).Viewer(), req.PriceID)
	if err != nil {
		return s.billingError(c, "checkout", err)
	}
	return c.JSON(CheckoutResponse{URL: url})
}

// GetBillingSync applies a finished checkout session.
func (s *APIServer) GetBillingSync(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "missing session_id"})
	}
	if err := s.billing.SyncCheckoutSession(c.UserContext(), usercontext.GetUserContext(c).Viewer(), sessionID); err != nil {
		return s.billingError(c, "sync", err)
	}
	return c.JSON(Ok{Ok: true})
}

func (s *APIServer) PostBillingSetupIntent(c *fiber.Ctx) error {
	secret, err := s.billing.CreateSetupIntent(c.UserContext(), usercontext.GetUserContext(c).Viewer())
	if err != nil {
		return s.billingError(c, "setup_intent", err)
	}
	return c.JSON(SetupIntentResponse{ClientSecret: secret})
}

func (s *APIServer) PostBillingAttachPaymentMethod(c *fiber.Ctx) error {
	var req AttachPaymentMethodRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.PaymentMethodID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "missing paymentMethodId"})
	}
	if err := s.billing.AttachPaymentMethod(c.UserContext(), usercontext.GetUserContext(c).Viewer(), req.PaymentMethodID); err != nil {
		return s.billingError(c, "attach_payment_method", err)
	}
	return c.JSON(Ok{Ok: true})
}

func (s *APIServer) PostBillingCancel(c *fiber.Ctx) error {
	if err := s.billing.CancelSubscription(c.UserContext(), usercontext.GetUserContext(c).Viewer()); err != nil {
		return s.billingError(c, "cancel", err)
	}
	return c.JSON(CancelResponse{Ok: true, CancelAtPeriodEnd: true})
}

// GetBillingEntitlement never fails; a read error answers not premium.
func (s *APIServer) GetBillingEntitlement(c *fiber.Ctx) error {
	return c.JSON(s.billing.ReadEntitlement(c.UserContext(), usercontext.GetUserContext(c).Viewer()))
}

func (s *APIServer) GetListings(c *fiber.Ctx) error {
	res, err := s.market.SearchListings(c.UserContext(), marketplace.Search{
		Query:    c.Query("q"),
		Material: c.Query("material"),
		City:     c.Query("city"),
		Page:     c.QueryInt("page", 1),
	})
	if err != nil {
		return s.marketError(c, "search", err)
	}
	listings := res.Listings
	if listings == nil {
		listings = []models.Listing{}
	}
	return c.JSON(ListingPage{Listings: listings, Total: res.Total, Page: res.Page, Pages: res.Pages})
}

func (s *APIServer) GetListing(c *fiber.Ctx, uuid string) error {
	d, err := s.market.GetListing(c.UserContext(), usercontext.GetUserID(c), uuid)
	if err != nil {
		return s.marketError(c, "get_listing", err)
	}
	return c.JSON(ListingDetail{
		Listing:      d.Listing,
		ContactPhone: d.Listing.ContactPhone,
		ContactEmail: d.Listing.ContactEmail,
		ShowContacts: d.ShowContacts,
		Photos:       d.Photos,
	})
}

func (s *APIServer) PostDevices(c *fiber.Ctx) error {
	var req DeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "invalid request body"})
	}
	if _, err := s.market.RegisterDevice(c.UserContext(), usercontext.GetUserID(c), req.Token, req.Platform); err != nil {
		return s.marketError(c, "register_device", err)
	}
	return c.Status(fiber.StatusCreated).JSON(Ok{Ok: true})
}

func (s *APIServer) GetUnreadCount(c *fiber.Ctx) error {
	n, err := s.market.UnreadCount(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return s.marketError(c, "unread_count", err)
	}
	return c.JSON(UnreadCount{Count: n})
}

func (s *APIServer) GetOffersReceived(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	offers, err := s.market.ReceivedOffers(c.UserContext(), usercontext.GetUserID(c), page)
	if err != nil {
		return s.marketError(c, "received_offers", err)
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	return c.JSON(OfferPage{Offers: offers, Page: page})
}
