package marketplace

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/entitlements"
)

// OfferInput is a buyer's bid on a listing.
type OfferInput struct {
	AmountCents int64   `form:"amount_cents" json:"amount_cents"`
	Quantity    float64 `form:"quantity" json:"quantity"`
	Message     string  `form:"message" json:"message"`
}

// SubmitOffer creates an offer, opens the conversation, posts the offer
// message and notifies the seller. When a step after the offer fails the
// offer is returned together with a *StepError.
func (s *Service) SubmitOffer(ctx context.Context, buyerID uint, listingUUID string, in OfferInput) (*models.Offer, error) {
	l, err := s.repos.Listing.GetByUUID(ctx, listingUUID)
	if err != nil {
		return nil, notFound(err)
	}
	if l.IsOwnedBy(buyerID) {
		return nil, fmt.Errorf("%w: cannot make an offer on your own listing", ErrInvalid)
	}
	if !l.IsOpen() {
		return nil, fmt.Errorf("%w: listing is no longer available", ErrInvalid)
	}

	offer := &models.Offer{
		ListingID:   l.ID,
		BuyerID:     buyerID,
		AmountCents: in.AmountCents,
		Quantity:    in.Quantity,
		Message:     strings.TrimSpace(in.Message),
		Status:      models.OFFER_STATUS_PENDING,
	}
	if err := validateStruct(offer); err != nil {
		return nil, invalid(err)
	}
	if err := s.repos.Offer.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	conv, err := s.repos.Conversation.GetOrCreate(ctx, l.ID, buyerID, l.SellerID)
	if err != nil {
		return offer, &StepError{Step: StepConversation, Err: err}
	}

	body := fmt.Sprintf("Offer: %d.%02d %s", offer.AmountCents/100, offer.AmountCents%100, l.Currency)
	if offer.Message != "" {
		body += "\n\n" + offer.Message
	}
	if err := s.repos.Conversation.AddMessage(ctx, &models.Message{ConversationID: conv.ID, SenderID: buyerID, Body: body}); err != nil {
		return offer, &StepError{Step: StepMessage, Err: err}
	}

	if err := s.notify(ctx, l.SellerID, models.NOTIFICATION_OFFER, "New offer", fmt.Sprintf("New offer on %q", l.Title), "/offers"); err != nil {
		return offer, &StepError{Step: StepNotify, Err: err}
	}
	return offer, nil
}

// ReceivedOffers lists offers on the seller's listings. Premium only.
func (s *Service) ReceivedOffers(ctx context.Context, sellerID uint, page int) ([]models.Offer, error) {
	if err := s.requireFeature(ctx, sellerID, entitlements.FeatureViewOffers); err != nil {
		return nil, err
	}
	return s.repos.Offer.ListReceived(ctx, sellerID, offset(page), PageSize)
}

// SentOffers lists the buyer's own offers.
func (s *Service) SentOffers(ctx context.Context, buyerID uint, page int) ([]models.Offer, error) {
	return s.repos.Offer.ListSent(ctx, buyerID, offset(page), PageSize)
}

// RespondToOffer accepts or rejects a pending offer on the seller's listing.
func (s *Service) RespondToOffer(ctx context.Context, sellerID, offerID uint, accept bool) error {
	if err := s.requireFeature(ctx, sellerID, entitlements.FeatureViewOffers); err != nil {
		return err
	}
	offer, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return notFound(err)
	}
	l, err := s.repos.Listing.GetByID(ctx, offer.ListingID)
	if err != nil {
		return notFound(err)
	}
	if !l.IsOwnedBy(sellerID) {
		return ErrForbidden
	}
	if !offer.IsPending() {
		return fmt.Errorf("%w: offer is %s", ErrInvalid, offer.Status)
	}

	status, verb := models.OFFER_STATUS_REJECTED, "rejected"
	if accept {
		status, verb = models.OFFER_STATUS_ACCEPTED, "accepted"
	}
	if err := s.repos.Offer.UpdateStatus(ctx, offer.ID, status); err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if err := s.notify(ctx, offer.BuyerID, models.NOTIFICATION_OFFER_UPDATE, "Offer "+verb,
		fmt.Sprintf("Your offer on %q was %s", l.Title, verb), "/offers/sent"); err != nil {
		s.log.Warn().Err(err).Uint("offer_id", offer.ID).Msg("offer update notification failed")
	}
	return nil
}

// WithdrawOffer lets the buyer take back a pending offer.
func (s *Service) WithdrawOffer(ctx context.Context, buyerID, offerID uint) error {
	offer, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return notFound(err)
	}
	if offer.BuyerID != buyerID {
		return ErrForbidden
	}
	if !offer.IsPending() {
		return fmt.Errorf("%w: offer is %s", ErrInvalid, offer.Status)
	}
	return s.repos.Offer.UpdateStatus(ctx, offer.ID, models.OFFER_STATUS_WITHDRAWN)
}
