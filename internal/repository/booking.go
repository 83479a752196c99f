package repository

import (
	"context"

	"rideshare/internal/domain"
)

// BookingRepository defines the persistence operations for seat bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// ListByRide retrieves all bookings against a ride, newest first.
	ListByRide(ctx context.Context, rideID string) ([]*domain.Booking, error)

	// ListByRides retrieves all bookings against a set of rides.
	ListByRides(ctx context.Context, rideIDs []string) ([]*domain.Booking, error)

	// ListByPassenger retrieves a passenger's bookings, newest first.
	ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error)

	// ConfirmedSeats returns the number of seats held by CONFIRMED
	// bookings on a ride.
	ConfirmedSeats(ctx context.Context, rideID string) (int, error)

	// Update updates an existing booking.
	Update(ctx context.Context, booking *domain.Booking) error
}
