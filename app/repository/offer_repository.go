package repository

import (
	"context"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"gorm.io/gorm"
)

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository creates a new offer repository instance
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Omit("Listing", "Buyer").Create(offer).Error
}

func (r *offerRepository) GetByID(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).Preload("Listing").Preload("Buyer").First(&offer, id).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Offer{}).Where("id = ?", id).Update("status", status).Error
}

// ListReceived returns offers on listings owned by sellerID, newest first.
func (r *offerRepository) ListReceived(ctx context.Context, sellerID uint, offset, limit int) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Joins("JOIN listings ON listings.id = offers.listing_id").
		Where("listings.seller_id = ?", sellerID).
		Preload("Listing").Preload("Buyer").
		Order("offers.created_at DESC").Offset(offset).Limit(limit).
		Find(&offers).Error
	return offers, err
}

func (r *offerRepository) ListSent(ctx context.Context, buyerID uint, offset, limit int) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).
		Preload("Listing").Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&offers).Error
	return offers, err
}

func (r *offerRepository) ListByListing(ctx context.Context, listingID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).
		Preload("Buyer").Order("created_at DESC").Find(&offers).Error
	return offers, err
}
