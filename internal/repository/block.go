package repository

import (
	"context"

	"rideshare/internal/domain"
)

// BlockRepository defines the persistence operations for user blocks.
type BlockRepository interface {
	// Create persists a new block.
	Create(ctx context.Context, block *domain.UserBlock) error

	// Delete removes a block.
	Delete(ctx context.Context, blockerID, blockedID string) error

	// ListByBlocker retrieves the blocks a user has placed.
	ListByBlocker(ctx context.Context, blockerID string) ([]*domain.UserBlock, error)

	// IsBlockedPair reports whether either user has blocked the other.
	IsBlockedPair(ctx context.Context, userA, userB string) (bool, error)

	// BlockedIDs returns every user ID blocked by or blocking userID.
	BlockedIDs(ctx context.Context, userID string) ([]string, error)
}
