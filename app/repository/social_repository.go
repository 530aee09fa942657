package repository

import (
	"context"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type socialRepository struct {
	db *gorm.DB
}

// NewSocialRepository creates a repository for follows and saved listings
func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	return r.db.WithContext(ctx).Omit("Followee").Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
}

func (r *socialRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return r.db.WithContext(ctx).Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
}

func (r *socialRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Count(&n).Error
	return n > 0, err
}

func (r *socialRepository) ListFollowing(ctx context.Context, followerID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).Where("follower_id = ?", followerID).
		Preload("Followee").Order("created_at DESC").Find(&follows).Error
	return follows, err
}

func (r *socialRepository) ListFollowerIDs(ctx context.Context, followeeID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("followee_id = ?", followeeID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *socialRepository) SaveListing(ctx context.Context, userID, listingID uint) error {
	return r.db.WithContext(ctx).Omit("Listing").Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SavedListing{UserID: userID, ListingID: listingID}).Error
}

func (r *socialRepository) UnsaveListing(ctx context.Context, userID, listingID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.SavedListing{}).Error
}

func (r *socialRepository) IsSaved(ctx context.Context, userID, listingID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SavedListing{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).Count(&n).Error
	return n > 0, err
}

func (r *socialRepository) ListSaved(ctx context.Context, userID uint) ([]models.SavedListing, error) {
	var saved []models.SavedListing
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Preload("Listing").Preload("Listing.Photos").Order("created_at DESC").Find(&saved).Error
	return saved, err
}
