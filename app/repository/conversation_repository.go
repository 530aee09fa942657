package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository instance
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// GetOrCreate returns the thread for (listing, buyer), creating it on first contact.
func (r *conversationRepository) GetOrCreate(ctx context.Context, listingID, buyerID, sellerID uint) (*models.Conversation, error) {
	db := r.db.WithContext(ctx)
	conv := models.Conversation{ListingID: listingID, BuyerID: buyerID, SellerID: sellerID}
	if err := db.Omit("Listing").Clauses(clause.OnConflict{DoNothing: true}).Create(&conv).Error; err != nil {
		return nil, err
	}
	var existing models.Conversation
	if err := db.Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).Preload("Listing").First(&conv, id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Preload("Listing").
		Order("last_message_at DESC").Offset(offset).Limit(limit).
		Find(&convs).Error
	return convs, err
}

// AddMessage stores msg and bumps the thread's last_message_at in one transaction.
func (r *conversationRepository) AddMessage(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", msg.ConversationID).
			UpdateColumn("last_message_at", msg.CreatedAt).Error
	})
}

// ListMessages returns the latest limit messages in chronological order.
func (r *conversationRepository) ListMessages(ctx context.Context, conversationID uint, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *conversationRepository) MarkRead(ctx context.Context, conversationID, readerID uint) error {
	return r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		UpdateColumn("read_at", time.Now()).Error
}
