package repository

import (
	"context"

	"rideshare/internal/domain"
)

// ConversationRepository defines the persistence operations for
// conversations and their messages.
type ConversationRepository interface {
	// Create persists a new conversation.
	Create(ctx context.Context, conv *domain.Conversation) error

	// GetByID retrieves a conversation by ID.
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)

	// GetByRideAndPair retrieves the conversation for a ride between two
	// users, regardless of participant order.
	GetByRideAndPair(ctx context.Context, rideID, userA, userB string) (*domain.Conversation, error)

	// ListByUser retrieves a user's conversations, most recent activity first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error)

	// CreateMessage persists a message and bumps the conversation's
	// last-message timestamp.
	CreateMessage(ctx context.Context, msg *domain.Message) error

	// ListMessages retrieves a conversation's messages, oldest first.
	ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error)

	// MarkRead marks all messages sent to userID in the conversation as read.
	MarkRead(ctx context.Context, conversationID, userID string) error

	// UnreadCount returns the number of unread messages addressed to
	// userID in the conversation.
	UnreadCount(ctx context.Context, conversationID, userID string) (int, error)
}
