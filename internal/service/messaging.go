package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// MessagingService handles conversations and messages between users.
type MessagingService struct {
	convRepo  repository.ConversationRepository
	blockRepo repository.BlockRepository
	emails    *EmailService
}

// NewMessagingService creates a new MessagingService.
func NewMessagingService(
	convRepo repository.ConversationRepository,
	blockRepo repository.BlockRepository,
	emails *EmailService,
) *MessagingService {
	return &MessagingService{
		convRepo:  convRepo,
		blockRepo: blockRepo,
		emails:    emails,
	}
}

// StartConversationRequest contains the parameters for opening a thread.
type StartConversationRequest struct {
	RideID  string // Optional
	UserID  string
	OtherID string
}

// StartConversation returns the existing conversation for the pair and
// ride, creating it if absent.
func (s *MessagingService) StartConversation(ctx context.Context, req StartConversationRequest) (*domain.Conversation, error) {
	if req.UserID == "" || req.OtherID == "" {
		return nil, ErrInvalidPosterID
	}
	if req.UserID == req.OtherID {
		return nil, ErrSelfConversation
	}

	blocked, err := s.blockRepo.IsBlockedPair(ctx, req.UserID, req.OtherID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	conv, err := s.convRepo.GetByRideAndPair(ctx, req.RideID, req.UserID, req.OtherID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	conv = &domain.Conversation{
		ID:            uuid.New().String(),
		RideID:        req.RideID,
		UserA:         req.UserID,
		UserB:         req.OtherID,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if err := s.convRepo.Create(ctx, conv); err != nil {
		// Lost a race with the other participant; fetch theirs.
		if errors.Is(err, repository.ErrDuplicate) {
			return s.convRepo.GetByRideAndPair(ctx, req.RideID, req.UserID, req.OtherID)
		}
		return nil, err
	}
	return conv, nil
}

// SendMessageRequest contains the parameters for sending a message.
type SendMessageRequest struct {
	ConversationID string
	SenderID       string
	Body           string
}

// SendMessage sanitizes and stores a message. The recipient gets an
// email only when they have no unread messages in the thread already.
func (s *MessagingService) SendMessage(ctx context.Context, req SendMessageRequest) (*domain.Message, error) {
	conv, err := s.participantConversation(ctx, req.ConversationID, req.SenderID)
	if err != nil {
		return nil, err
	}

	recipient := conv.OtherParticipant(req.SenderID)
	blocked, err := s.blockRepo.IsBlockedPair(ctx, req.SenderID, recipient)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	body := SanitizeText(req.Body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	unread, err := s.convRepo.UnreadCount(ctx, conv.ID, recipient)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       req.SenderID,
		Body:           body,
		SentAt:         time.Now(),
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if unread == 0 {
		s.emails.Enqueue(ctx, recipient, domain.EmailKindMessageReceived,
			"New message", "You have a new message on RideShareTahoe.")
	}

	return msg, nil
}

// ListConversations returns a user's threads, most recent first.
func (s *MessagingService) ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	if userID == "" {
		return nil, ErrInvalidPosterID
	}
	return s.convRepo.ListByUser(ctx, userID)
}

// ListMessages returns a conversation's messages, oldest first.
// Participant-only.
func (s *MessagingService) ListMessages(ctx context.Context, conversationID, userID string) ([]*domain.Message, error) {
	if _, err := s.participantConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return s.convRepo.ListMessages(ctx, conversationID)
}

// MarkRead marks the user's incoming messages in the thread as read.
func (s *MessagingService) MarkRead(ctx context.Context, conversationID, userID string) error {
	if _, err := s.participantConversation(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.convRepo.MarkRead(ctx, conversationID, userID)
}

func (s *MessagingService) participantConversation(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	if conversationID == "" || userID == "" {
		return nil, ErrInvalidPosterID
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}
