package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, ride_id, passenger_id, seats, status, message, created_at, responded_at, cancelled_at, cancel_reason`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO trip_bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.RideID,
		booking.PassengerID,
		booking.Seats,
		booking.Status,
		nullString(booking.Message),
		booking.CreatedAt,
		nullTime(booking.RespondedAt),
		nullTime(booking.CancelledAt),
		nullString(booking.CancelReason),
	)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM trip_bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return booking, nil
}

// ListByRide retrieves all bookings against a ride, newest first.
func (r *BookingRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM trip_bookings WHERE ride_id = $1 ORDER BY created_at DESC`
	return r.queryBookings(ctx, query, rideID)
}

// ListByRides retrieves all bookings against a set of rides.
func (r *BookingRepository) ListByRides(ctx context.Context, rideIDs []string) ([]*domain.Booking, error) {
	if len(rideIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + bookingColumns + ` FROM trip_bookings WHERE ride_id = ANY($1) ORDER BY created_at DESC`
	return r.queryBookings(ctx, query, pq.Array(rideIDs))
}

// ListByPassenger retrieves a passenger's bookings, newest first.
func (r *BookingRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM trip_bookings WHERE passenger_id = $1 ORDER BY created_at DESC`
	return r.queryBookings(ctx, query, passengerID)
}

// ConfirmedSeats returns the number of seats held by CONFIRMED bookings.
func (r *BookingRepository) ConfirmedSeats(ctx context.Context, rideID string) (int, error) {
	query := `SELECT COALESCE(SUM(seats), 0) FROM trip_bookings WHERE ride_id = $1 AND status = $2`

	var seats int
	err := r.q.QueryRowContext(ctx, query, rideID, domain.BookingStatusConfirmed).Scan(&seats)
	return seats, err
}

// Update updates an existing booking.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE trip_bookings
		SET seats = $1, status = $2, message = $3, responded_at = $4, cancelled_at = $5, cancel_reason = $6
		WHERE id = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		booking.Seats,
		booking.Status,
		nullString(booking.Message),
		nullTime(booking.RespondedAt),
		nullTime(booking.CancelledAt),
		nullString(booking.CancelReason),
		booking.ID,
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

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var message, cancelReason sql.NullString
	var respondedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.PassengerID,
		&booking.Seats,
		&booking.Status,
		&message,
		&booking.CreatedAt,
		&respondedAt,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	booking.Message = message.String
	booking.CancelReason = cancelReason.String
	if respondedAt.Valid {
		booking.RespondedAt = respondedAt.Time
	}
	if cancelledAt.Valid {
		booking.CancelledAt = cancelledAt.Time
	}
	return &booking, nil
}
