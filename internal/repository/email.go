package repository

import (
	"context"
	"time"

	"rideshare/internal/domain"
)

// EmailRepository defines the persistence operations for the outgoing
// email queue.
type EmailRepository interface {
	// Enqueue persists a new email event in QUEUED state.
	Enqueue(ctx context.Context, event *domain.EmailEvent) error

	// Due retrieves up to limit events ready to send at the given time,
	// oldest first.
	Due(ctx context.Context, now time.Time, limit int) ([]*domain.EmailEvent, error)

	// Update updates an existing email event.
	Update(ctx context.Context, event *domain.EmailEvent) error
}
