package marketplace

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/entitlements"
)

const threadLimit = 200

// Conversations lists the user's threads, most recent first.
func (s *Service) Conversations(ctx context.Context, userID uint, page int) ([]models.Conversation, error) {
	return s.repos.Conversation.ListForUser(ctx, userID, offset(page), PageSize)
}

func (s *Service) participantConversation(ctx context.Context, userID, conversationID uint) (*models.Conversation, error) {
	conv, err := s.repos.Conversation.GetByID(ctx, conversationID)
	if err != nil {
		return nil, notFound(err)
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	return conv, nil
}

// Thread returns a conversation with its messages and marks the other
// participant's messages read.
func (s *Service) Thread(ctx context.Context, userID, conversationID uint) (*models.Conversation, []models.Message, error) {
	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.repos.Conversation.ListMessages(ctx, conv.ID, threadLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("list messages: %w", err)
	}
	if err := s.repos.Conversation.MarkRead(ctx, conv.ID, userID); err != nil {
		s.log.Warn().Err(err).Uint("conversation_id", conv.ID).Msg("mark read failed")
	}
	return conv, msgs, nil
}

// OpenConversation returns the buyer's thread about a listing, creating it on
// first contact. Premium only.
func (s *Service) OpenConversation(ctx context.Context, buyerID uint, listingUUID string) (*models.Conversation, error) {
	if err := s.requireFeature(ctx, buyerID, entitlements.FeatureMessaging); err != nil {
		return nil, err
	}
	l, err := s.repos.Listing.GetByUUID(ctx, listingUUID)
	if err != nil {
		return nil, notFound(err)
	}
	if l.IsOwnedBy(buyerID) {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalid)
	}
	return s.repos.Conversation.GetOrCreate(ctx, l.ID, buyerID, l.SellerID)
}

// SendMessage posts body to a conversation and notifies the other
// participant. Premium only.
func (s *Service) SendMessage(ctx context.Context, senderID, conversationID uint, body string) (*models.Message, error) {
	if err := s.requireFeature(ctx, senderID, entitlements.FeatureMessaging); err != nil {
		return nil, err
	}
	conv, err := s.participantConversation(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" || len(body) > 4000 {
		return nil, fmt.Errorf("%w: message must be 1-4000 characters", ErrInvalid)
	}

	msg := &models.Message{ConversationID: conv.ID, SenderID: senderID, Body: body}
	if err := s.repos.Conversation.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}
	link := fmt.Sprintf("/messages/%d", conv.ID)
	if err := s.notify(ctx, conv.Counterpart(senderID), models.NOTIFICATION_MESSAGE, "New message", preview(body), link); err != nil {
		return msg, &StepError{Step: StepNotify, Err: err}
	}
	return msg, nil
}

func preview(body string) string {
	r := []rune(body)
	if len(r) <= 80 {
		return body
	}
	return string(r[:80]) + "…"
}
