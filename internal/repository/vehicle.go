package repository

import (
	"context"

	"rideshare/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// ListByOwner retrieves a user's vehicles.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Vehicle, error)

	// Delete removes a vehicle.
	Delete(ctx context.Context, id string) error
}
