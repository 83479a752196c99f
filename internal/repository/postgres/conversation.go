package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// ConversationRepository is a PostgreSQL implementation of
// repository.ConversationRepository.
type ConversationRepository struct {
	q Querier
}

// NewConversationRepository creates a new PostgreSQL conversation repository.
func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{q: db}
}

const conversationColumns = `id, ride_id, user_a, user_b, created_at, last_message_at`

// Create persists a new conversation.
func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	query := `
		INSERT INTO conversations (` + conversationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		conv.ID,
		nullString(conv.RideID),
		conv.UserA,
		conv.UserB,
		conv.CreatedAt,
		conv.LastMessageAt,
	)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a conversation by ID.
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	conv, err := scanConversation(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return conv, nil
}

// GetByRideAndPair retrieves the conversation for a ride between two users.
func (r *ConversationRepository) GetByRideAndPair(ctx context.Context, rideID, userA, userB string) (*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + ` FROM conversations
		WHERE ride_id IS NOT DISTINCT FROM $1
		  AND ((user_a = $2 AND user_b = $3) OR (user_a = $3 AND user_b = $2))
	`

	conv, err := scanConversation(r.q.QueryRowContext(ctx, query, nullString(rideID), userA, userB))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return conv, nil
}

// ListByUser retrieves a user's conversations, most recent activity first.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + ` FROM conversations
		WHERE user_a = $1 OR user_b = $1
		ORDER BY last_message_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*domain.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

// CreateMessage persists a message and bumps the conversation's
// last-message timestamp.
func (r *ConversationRepository) CreateMessage(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, body, sent_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.SenderID,
		msg.Body,
		msg.SentAt,
		nullTime(msg.ReadAt),
	)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx,
		`UPDATE conversations SET last_message_at = $1 WHERE id = $2`,
		msg.SentAt, msg.ConversationID,
	)
	return err
}

// ListMessages retrieves a conversation's messages, oldest first.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, body, sent_at, read_at
		FROM messages WHERE conversation_id = $1 ORDER BY sent_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var msg domain.Message
		var readAt sql.NullTime
		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.Body,
			&msg.SentAt,
			&readAt,
		); err != nil {
			return nil, err
		}
		if readAt.Valid {
			msg.ReadAt = readAt.Time
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// MarkRead marks all messages sent to userID in the conversation as read.
func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID, userID string) error {
	query := `
		UPDATE messages SET read_at = $1
		WHERE conversation_id = $2 AND sender_id <> $3 AND read_at IS NULL
	`

	_, err := r.q.ExecContext(ctx, query, time.Now(), conversationID, userID)
	return err
}

// UnreadCount returns the number of unread messages addressed to userID.
func (r *ConversationRepository) UnreadCount(ctx context.Context, conversationID, userID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM messages
		WHERE conversation_id = $1 AND sender_id <> $2 AND read_at IS NULL
	`

	var count int
	err := r.q.QueryRowContext(ctx, query, conversationID, userID).Scan(&count)
	return count, err
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var conv domain.Conversation
	var rideID sql.NullString

	err := row.Scan(
		&conv.ID,
		&rideID,
		&conv.UserA,
		&conv.UserB,
		&conv.CreatedAt,
		&conv.LastMessageAt,
	)
	if err != nil {
		return nil, err
	}

	conv.RideID = rideID.String
	return &conv, nil
}
