package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// CONVERSATIONS AND MESSAGES
// ──────────────────────────────────────────────

func newMessagingFixture() (*service.MessagingService, *MockConversationRepository, *MockBlockRepository, *MockEmailRepository) {
	convRepo := NewMockConversationRepository()
	blockRepo := NewMockBlockRepository()
	emailRepo := NewMockEmailRepository()
	emails := service.NewEmailService(emailRepo)
	return service.NewMessagingService(convRepo, blockRepo, emails), convRepo, blockRepo, emailRepo
}

func TestStartConversation_ReusesExistingThread(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newMessagingFixture()

	first, err := svc.StartConversation(context.Background(), service.StartConversationRequest{
		RideID:  "ride-1",
		UserID:  "alice",
		OtherID: "bob",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Same pair in the opposite order gets the same thread.
	second, err := svc.StartConversation(context.Background(), service.StartConversationRequest{
		RideID:  "ride-1",
		UserID:  "bob",
		OtherID: "alice",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected one thread per (ride, pair), got %s and %s", first.ID, second.ID)
	}
}

func TestStartConversation_Rejections(t *testing.T) {
	t.Parallel()

	svc, _, blockRepo, _ := newMessagingFixture()
	blockRepo.AddBlock("alice", "mallory")

	if _, err := svc.StartConversation(context.Background(), service.StartConversationRequest{
		UserID:  "alice",
		OtherID: "alice",
	}); !errors.Is(err, service.ErrSelfConversation) {
		t.Errorf("expected ErrSelfConversation, got %v", err)
	}

	if _, err := svc.StartConversation(context.Background(), service.StartConversationRequest{
		UserID:  "mallory",
		OtherID: "alice",
	}); !errors.Is(err, service.ErrBlocked) {
		t.Errorf("expected ErrBlocked, got %v", err)
	}
}

func TestSendMessage_SanitizesBody(t *testing.T) {
	t.Parallel()

	svc, convRepo, _, _ := newMessagingFixture()
	convRepo.AddConversation(&domain.Conversation{
		ID: "c1", UserA: "alice", UserB: "bob",
		CreatedAt: time.Now(), LastMessageAt: time.Now(),
	})

	msg, err := svc.SendMessage(context.Background(), service.SendMessageRequest{
		ConversationID: "c1",
		SenderID:       "alice",
		Body:           "call me at 530-555-0134 instead",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if strings.Contains(msg.Body, "530") {
		t.Errorf("phone number survived sanitization: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "[removed]") {
		t.Errorf("expected placeholder in body, got %q", msg.Body)
	}
}

func TestSendMessage_EmptyAfterSanitization_Fails(t *testing.T) {
	t.Parallel()

	svc, convRepo, _, _ := newMessagingFixture()
	convRepo.AddConversation(&domain.Conversation{
		ID: "c1", UserA: "alice", UserB: "bob",
		CreatedAt: time.Now(), LastMessageAt: time.Now(),
	})

	_, err := svc.SendMessage(context.Background(), service.SendMessageRequest{
		ConversationID: "c1",
		SenderID:       "alice",
		Body:           "   ",
	})
	if !errors.Is(err, service.ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestSendMessage_NonParticipant_Fails(t *testing.T) {
	t.Parallel()

	svc, convRepo, _, _ := newMessagingFixture()
	convRepo.AddConversation(&domain.Conversation{
		ID: "c1", UserA: "alice", UserB: "bob",
		CreatedAt: time.Now(), LastMessageAt: time.Now(),
	})

	_, err := svc.SendMessage(context.Background(), service.SendMessageRequest{
		ConversationID: "c1",
		SenderID:       "mallory",
		Body:           "let me in",
	})
	if !errors.Is(err, service.ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
}

func TestSendMessage_EmailOnlyOnFirstUnread(t *testing.T) {
	t.Parallel()

	svc, convRepo, _, emailRepo := newMessagingFixture()
	convRepo.AddConversation(&domain.Conversation{
		ID: "c1", UserA: "alice", UserB: "bob",
		CreatedAt: time.Now(), LastMessageAt: time.Now(),
	})

	for _, body := range []string{"first", "second", "third"} {
		if _, err := svc.SendMessage(context.Background(), service.SendMessageRequest{
			ConversationID: "c1",
			SenderID:       "alice",
			Body:           body,
		}); err != nil {
			t.Fatalf("send %q: %v", body, err)
		}
	}

	// Three unread messages, one email.
	events := emailRepo.EventsByKind(domain.EmailKindMessageReceived)
	if len(events) != 1 {
		t.Fatalf("expected 1 email while thread is unread, got %d", len(events))
	}
	if events[0].RecipientID != "bob" {
		t.Errorf("expected email to bob, got %s", events[0].RecipientID)
	}

	// After the recipient catches up, the next message emails again.
	if err := svc.MarkRead(context.Background(), "c1", "bob"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), service.SendMessageRequest{
		ConversationID: "c1",
		SenderID:       "alice",
		Body:           "fourth",
	}); err != nil {
		t.Fatalf("send after read: %v", err)
	}
	events = emailRepo.EventsByKind(domain.EmailKindMessageReceived)
	if len(events) != 2 {
		t.Errorf("expected a second email after the thread was read, got %d", len(events))
	}
}

func TestListMessages_ParticipantOnly(t *testing.T) {
	t.Parallel()

	svc, convRepo, _, _ := newMessagingFixture()
	convRepo.AddConversation(&domain.Conversation{
		ID: "c1", UserA: "alice", UserB: "bob",
		CreatedAt: time.Now(), LastMessageAt: time.Now(),
	})

	if _, err := svc.ListMessages(context.Background(), "c1", "mallory"); !errors.Is(err, service.ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := svc.ListMessages(context.Background(), "c1", "bob"); err != nil {
		t.Errorf("participant listing failed: %v", err)
	}
}
