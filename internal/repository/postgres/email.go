package postgres

import (
	"context"
	"database/sql"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// EmailRepository is a PostgreSQL implementation of repository.EmailRepository.
type EmailRepository struct {
	q Querier
}

// NewEmailRepository creates a new PostgreSQL email-event repository.
func NewEmailRepository(db *sql.DB) *EmailRepository {
	return &EmailRepository{q: db}
}

const emailColumns = `id, recipient_id, kind, subject, body, status, attempts, last_error, next_attempt_at, created_at, sent_at`

// Enqueue persists a new email event in QUEUED state.
func (r *EmailRepository) Enqueue(ctx context.Context, event *domain.EmailEvent) error {
	query := `
		INSERT INTO email_events (` + emailColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		event.ID,
		event.RecipientID,
		event.Kind,
		event.Subject,
		event.Body,
		event.Status,
		event.Attempts,
		nullString(event.LastError),
		nullTime(event.NextAttemptAt),
		event.CreatedAt,
		nullTime(event.SentAt),
	)
	return err
}

// Due retrieves up to limit events ready to send, oldest first.
func (r *EmailRepository) Due(ctx context.Context, now time.Time, limit int) ([]*domain.EmailEvent, error) {
	query := `
		SELECT ` + emailColumns + ` FROM email_events
		WHERE status = $1 AND (next_attempt_at IS NULL OR next_attempt_at <= $2)
		ORDER BY created_at ASC LIMIT $3
	`

	rows, err := r.q.QueryContext(ctx, query, domain.EmailStatusQueued, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.EmailEvent
	for rows.Next() {
		var event domain.EmailEvent
		var lastError sql.NullString
		var nextAttemptAt, sentAt sql.NullTime
		if err := rows.Scan(
			&event.ID,
			&event.RecipientID,
			&event.Kind,
			&event.Subject,
			&event.Body,
			&event.Status,
			&event.Attempts,
			&lastError,
			&nextAttemptAt,
			&event.CreatedAt,
			&sentAt,
		); err != nil {
			return nil, err
		}
		event.LastError = lastError.String
		if nextAttemptAt.Valid {
			event.NextAttemptAt = nextAttemptAt.Time
		}
		if sentAt.Valid {
			event.SentAt = sentAt.Time
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

// Update updates an existing email event.
func (r *EmailRepository) Update(ctx context.Context, event *domain.EmailEvent) error {
	query := `
		UPDATE email_events
		SET status = $1, attempts = $2, last_error = $3, next_attempt_at = $4, sent_at = $5
		WHERE id = $6
	`

	result, err := r.q.ExecContext(ctx, query,
		event.Status,
		event.Attempts,
		nullString(event.LastError),
		nullTime(event.NextAttemptAt),
		nullTime(event.SentAt),
		event.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
