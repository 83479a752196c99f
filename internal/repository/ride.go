package repository

import (
	"context"
	"time"

	"rideshare/internal/domain"
)

// RideFilter narrows a ride search. Zero values mean "no constraint".
type RideFilter struct {
	Role     domain.RideRole
	NearLat  float64
	NearLng  float64
	RadiusKm float64
	FromDate time.Time
	ToDate   time.Time
	Limit    int
}

// RideRepository defines the persistence operations for ride postings.
type RideRepository interface {
	// Create persists a new ride posting.
	Create(ctx context.Context, ride *domain.Ride) error

	// CreateBatch persists several postings at once (round trips, series).
	CreateBatch(ctx context.Context, rides []*domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByGroupID retrieves every ride sharing a round-trip group,
	// ordered by departure time.
	GetByGroupID(ctx context.Context, groupID string) ([]*domain.Ride, error)

	// ListByPoster retrieves all rides posted by a user, newest first.
	ListByPoster(ctx context.Context, posterID string) ([]*domain.Ride, error)

	// Search retrieves active rides matching the filter, newest
	// posting first.
	Search(ctx context.Context, filter RideFilter) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error

	// UpdateBatch updates several rides at once.
	UpdateBatch(ctx context.Context, rides []*domain.Ride) error
}
