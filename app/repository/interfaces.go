package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = gorm.ErrRecordNotFound

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByActivationToken(ctx context.Context, token string) (*models.User, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*models.User, *models.APIKey, error)
	GetAPIKey(ctx context.Context, userID uint) (*models.APIKey, error)
	SaveAPIKey(ctx context.Context, key *models.APIKey) error
	Update(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id uint) error
	ListAfterID(ctx context.Context, afterID uint, limit int) ([]models.User, error)
	GetProviderAccount(ctx context.Context, provider, providerUserID string) (*models.ProviderAccount, error)
	SaveProviderAccount(ctx context.Context, pa *models.ProviderAccount) error
}

// ListingFilter narrows listing searches. Zero values match everything.
type ListingFilter struct {
	Query    string
	Material string
	City     string
	SellerID uint
	Status   string
	Offset   int
	Limit    int
}

// ListingRepository defines the interface for listing-related database operations
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, f ListingFilter) ([]models.Listing, int64, error)
	ListBySellers(ctx context.Context, sellerIDs []uint, limit int) ([]models.Listing, error)
	AddPhoto(ctx context.Context, photo *models.ListingPhoto) error
	CountPhotos(ctx context.Context, listingID uint) (int64, error)
	AddViews(ctx context.Context, increments map[uint]int64) error
}

// OfferRepository defines the interface for offer-related database operations
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id uint) (*models.Offer, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	ListReceived(ctx context.Context, sellerID uint, offset, limit int) ([]models.Offer, error)
	ListSent(ctx context.Context, buyerID uint, offset, limit int) ([]models.Offer, error)
	ListByListing(ctx context.Context, listingID uint) ([]models.Offer, error)
}

// ConversationRepository defines the interface for conversations and their messages
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, listingID, buyerID, sellerID uint) (*models.Conversation, error)
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Conversation, error)
	AddMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uint, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID uint) error
}

// SocialRepository covers follows and saved listings.
type SocialRepository interface {
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	ListFollowing(ctx context.Context, followerID uint) ([]models.Follow, error)
	ListFollowerIDs(ctx context.Context, followeeID uint) ([]uint, error)
	SaveListing(ctx context.Context, userID, listingID uint) error
	UnsaveListing(ctx context.Context, userID, listingID uint) error
	IsSaved(ctx context.Context, userID, listingID uint) (bool, error)
	ListSaved(ctx context.Context, userID uint) ([]models.SavedListing, error)
}

// NotificationRepository defines the interface for notifications and push device tokens
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	SaveDeviceToken(ctx context.Context, token *models.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID uint) ([]string, error)
	DeleteDeviceToken(ctx context.Context, token string) error
}

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Listing      ListingRepository
	Offer        OfferRepository
	Conversation ConversationRepository
	Social       SocialRepository
	Notification NotificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Listing:      NewListingRepository(db),
		Offer:        NewOfferRepository(db),
		Conversation: NewConversationRepository(db),
		Social:       NewSocialRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
