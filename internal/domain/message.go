package domain

import "time"

// Conversation is a message thread between two users, optionally tied
// to a ride posting. At most one conversation exists per (ride, pair).
type Conversation struct {
	ID            string
	RideID        string
	UserA         string
	UserB         string
	CreatedAt     time.Time
	LastMessageAt time.Time
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserA == userID || c.UserB == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}

// Message represents a single message within a conversation.
// Body is stored after contact-info sanitization.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Body           string
	SentAt         time.Time
	ReadAt         time.Time
}
