package marketplace

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

const notificationLimit = 50

// Follow subscribes followerID to a seller's new listings.
func (s *Service) Follow(ctx context.Context, followerID, sellerID uint) error {
	if followerID == sellerID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalid)
	}
	seller, err := s.repos.User.GetByID(ctx, sellerID)
	if err != nil {
		return notFound(err)
	}
	already, err := s.repos.Social.IsFollowing(ctx, followerID, seller.ID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}
	if err := s.repos.Social.Follow(ctx, followerID, seller.ID); err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	if err := s.notify(ctx, seller.ID, models.NOTIFICATION_FOLLOW, "New follower", "Someone started following your listings", "/following"); err != nil {
		s.log.Warn().Err(err).Msg("follow notification failed")
	}
	return nil
}

func (s *Service) Unfollow(ctx context.Context, followerID, sellerID uint) error {
	return s.repos.Social.Unfollow(ctx, followerID, sellerID)
}

func (s *Service) Following(ctx context.Context, followerID uint) ([]models.Follow, error) {
	return s.repos.Social.ListFollowing(ctx, followerID)
}

// FollowingFeed returns recent active listings of followed sellers.
func (s *Service) FollowingFeed(ctx context.Context, followerID uint) ([]models.Listing, error) {
	follows, err := s.repos.Social.ListFollowing(ctx, followerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.FolloweeID)
	}
	return s.repos.Listing.ListBySellers(ctx, ids, PageSize)
}

func (s *Service) SaveListing(ctx context.Context, userID uint, listingUUID string) error {
	l, err := s.repos.Listing.GetByUUID(ctx, listingUUID)
	if err != nil {
		return notFound(err)
	}
	return s.repos.Social.SaveListing(ctx, userID, l.ID)
}

func (s *Service) UnsaveListing(ctx context.Context, userID uint, listingUUID string) error {
	l, err := s.repos.Listing.GetByUUID(ctx, listingUUID)
	if err != nil {
		return notFound(err)
	}
	return s.repos.Social.UnsaveListing(ctx, userID, l.ID)
}

func (s *Service) SavedListings(ctx context.Context, userID uint) ([]models.SavedListing, error) {
	return s.repos.Social.ListSaved(ctx, userID)
}

func (s *Service) Notifications(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.repos.Notification.ListForUser(ctx, userID, notificationLimit)
}

func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repos.Notification.CountUnread(ctx, userID)
}

func (s *Service) MarkNotificationRead(ctx context.Context, userID, id uint) error {
	return notFound(s.repos.Notification.MarkRead(ctx, userID, id))
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID uint) error {
	return s.repos.Notification.MarkAllRead(ctx, userID)
}

// RegisterDevice stores a push token for userID.
func (s *Service) RegisterDevice(ctx context.Context, userID uint, token, platform string) (*models.DeviceToken, error) {
	if platform == "" {
		platform = "web"
	}
	d := &models.DeviceToken{UserID: userID, Token: strings.TrimSpace(token), Platform: platform}
	if err := validateStruct(d); err != nil {
		return nil, invalid(err)
	}
	if err := s.repos.Notification.SaveDeviceToken(ctx, d); err != nil {
		return nil, fmt.Errorf("save device token: %w", err)
	}
	return d, nil
}
