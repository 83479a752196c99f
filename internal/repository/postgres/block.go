package postgres

import (
	"context"
	"database/sql"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// BlockRepository is a PostgreSQL implementation of repository.BlockRepository.
type BlockRepository struct {
	q Querier
}

// NewBlockRepository creates a new PostgreSQL block repository.
func NewBlockRepository(db *sql.DB) *BlockRepository {
	return &BlockRepository{q: db}
}

// Create persists a new block.
func (r *BlockRepository) Create(ctx context.Context, block *domain.UserBlock) error {
	query := `
		INSERT INTO user_blocks (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.q.ExecContext(ctx, query, block.BlockerID, block.BlockedID, block.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// Delete removes a block.
func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM user_blocks WHERE blocker_id = $1 AND blocked_id = $2`,
		blockerID, blockedID,
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

// ListByBlocker retrieves the blocks a user has placed.
func (r *BlockRepository) ListByBlocker(ctx context.Context, blockerID string) ([]*domain.UserBlock, error) {
	query := `
		SELECT blocker_id, blocked_id, created_at FROM user_blocks
		WHERE blocker_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, blockerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []*domain.UserBlock
	for rows.Next() {
		var block domain.UserBlock
		if err := rows.Scan(&block.BlockerID, &block.BlockedID, &block.CreatedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, &block)
	}
	return blocks, rows.Err()
}

// IsBlockedPair reports whether either user has blocked the other.
func (r *BlockRepository) IsBlockedPair(ctx context.Context, userA, userB string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`

	var blocked bool
	err := r.q.QueryRowContext(ctx, query, userA, userB).Scan(&blocked)
	return blocked, err
}

// BlockedIDs returns every user ID blocked by or blocking userID.
func (r *BlockRepository) BlockedIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT blocked_id FROM user_blocks WHERE blocker_id = $1
		UNION
		SELECT blocker_id FROM user_blocks WHERE blocked_id = $1
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
