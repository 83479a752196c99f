package repository

import (
	"context"

	"rideshare/internal/domain"
)

// ReportRepository defines the persistence operations for moderation reports.
type ReportRepository interface {
	// Create persists a new report.
	Create(ctx context.Context, report *domain.Report) error

	// GetByID retrieves a report by ID.
	GetByID(ctx context.Context, id string) (*domain.Report, error)

	// ListOpen retrieves all OPEN reports, oldest first.
	ListOpen(ctx context.Context) ([]*domain.Report, error)

	// Update updates an existing report.
	Update(ctx context.Context, report *domain.Report) error
}
