package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"gorm.io/gorm"
)

const defaultPageSize = 24

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository instance
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).Preload("Photos").Preload("Seller").First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) GetByUUID(ctx context.Context, uuid string) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).Preload("Photos").Preload("Seller").Where("uuid = ?", uuid).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Omit("Seller", "Photos").Save(listing).Error
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Update("status", status).Error
}

func (r *listingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Listing{}, id).Error
}

// Search returns one page of listings matching f, newest first, and the total match count.
func (r *listingRepository) Search(ctx context.Context, f ListingFilter) ([]models.Listing, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Listing{})
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + s + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if f.Material != "" {
		q = q.Where("material = ?", f.Material)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.SellerID != 0 {
		q = q.Where("seller_id = ?", f.SellerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	var listings []models.Listing
	err := q.Preload("Photos").Order("created_at DESC").Offset(f.Offset).Limit(limit).Find(&listings).Error
	return listings, total, err
}

func (r *listingRepository) ListBySellers(ctx context.Context, sellerIDs []uint, limit int) ([]models.Listing, error) {
	if len(sellerIDs) == 0 {
		return nil, nil
	}
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id IN ? AND status = ?", sellerIDs, models.LISTING_STATUS_ACTIVE).
		Order("created_at DESC").Limit(limit).Find(&listings).Error
	return listings, err
}

func (r *listingRepository) AddPhoto(ctx context.Context, photo *models.ListingPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *listingRepository) CountPhotos(ctx context.Context, listingID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ListingPhoto{}).Where("listing_id = ?", listingID).Count(&n).Error
	return n, err
}

// AddViews applies batched view increments in one UPDATE ... CASE statement.
func (r *listingRepository) AddViews(ctx context.Context, increments map[uint]int64) error {
	if len(increments) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(increments))
	for id, inc := range increments {
		if inc > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var builder strings.Builder
	args := make([]interface{}, 0, len(ids)*3)
	builder.WriteString("UPDATE listings SET view_count = view_count + CASE id")
	for _, id := range ids {
		builder.WriteString(" WHEN ? THEN ?")
		args = append(args, id, increments[id])
	}
	builder.WriteString(" END WHERE id IN ?")
	args = append(args, ids)

	return r.db.WithContext(ctx).Exec(builder.String(), args...).Error
}
