package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/lib/pq"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, poster_id, role, origin_name, origin_lat, origin_lng, dest_name, dest_lat, dest_lng, departure_at, seats_total, price_per_seat, notes, status, round_trip_group_id, is_recurring, is_return_leg, vehicle_id, created_at, cancelled_at, cancel_reason`

// Create persists a new ride posting.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	var cancelledAt sql.NullTime
	if !ride.CancelledAt.IsZero() {
		cancelledAt = sql.NullTime{Time: ride.CancelledAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.PosterID,
		ride.Role,
		ride.OriginName,
		ride.OriginLat,
		ride.OriginLng,
		ride.DestName,
		ride.DestLat,
		ride.DestLng,
		ride.DepartureAt,
		ride.SeatsTotal,
		ride.PricePerSeat,
		ride.Notes,
		ride.Status,
		nullString(ride.RoundTripGroupID),
		ride.IsRecurring,
		ride.IsReturnLeg,
		nullString(ride.VehicleID),
		ride.CreatedAt,
		cancelledAt,
		nullString(ride.CancelReason),
	)

	return err
}

// CreateBatch persists several postings in one transaction when the
// underlying querier is a transaction, or sequentially otherwise.
func (r *RideRepository) CreateBatch(ctx context.Context, rides []*domain.Ride) error {
	for _, ride := range rides {
		if err := r.Create(ctx, ride); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetByGroupID retrieves every ride sharing a round-trip group.
func (r *RideRepository) GetByGroupID(ctx context.Context, groupID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE round_trip_group_id = $1 ORDER BY departure_at ASC`
	return r.queryRides(ctx, query, groupID)
}

// ListByPoster retrieves all rides posted by a user, newest first.
func (r *RideRepository) ListByPoster(ctx context.Context, posterID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE poster_id = $1 ORDER BY departure_at DESC`
	return r.queryRides(ctx, query, posterID)
}

// Search retrieves active rides matching the filter, newest posting
// first. Proximity is a latitude/longitude bounding box around the
// requested point; precise enough at community scale.
func (r *RideRepository) Search(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status = $1`
	args := []any{domain.RideStatusActive}

	if filter.Role != "" {
		args = append(args, filter.Role)
		query += ` AND role = ` + placeholder(len(args))
	}
	if !filter.FromDate.IsZero() {
		args = append(args, filter.FromDate)
		query += ` AND departure_at >= ` + placeholder(len(args))
	}
	if !filter.ToDate.IsZero() {
		args = append(args, filter.ToDate)
		query += ` AND departure_at <= ` + placeholder(len(args))
	}
	if filter.RadiusKm > 0 {
		latDelta := filter.RadiusKm / 111.0
		lngDelta := latDelta
		if cos := math.Cos(filter.NearLat * math.Pi / 180); cos > 0.01 {
			lngDelta = filter.RadiusKm / (111.0 * cos)
		}
		args = append(args, filter.NearLat-latDelta, filter.NearLat+latDelta,
			filter.NearLng-lngDelta, filter.NearLng+lngDelta)
		query += ` AND origin_lat BETWEEN ` + placeholder(len(args)-3) + ` AND ` + placeholder(len(args)-2)
		query += ` AND origin_lng BETWEEN ` + placeholder(len(args)-1) + ` AND ` + placeholder(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` ORDER BY created_at DESC LIMIT ` + placeholder(len(args))

	return r.queryRides(ctx, query, args...)
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET origin_name = $1, origin_lat = $2, origin_lng = $3, dest_name = $4, dest_lat = $5, dest_lng = $6,
		    departure_at = $7, seats_total = $8, price_per_seat = $9, notes = $10, status = $11,
		    vehicle_id = $12, cancelled_at = $13, cancel_reason = $14
		WHERE id = $15
	`

	var cancelledAt sql.NullTime
	if !ride.CancelledAt.IsZero() {
		cancelledAt = sql.NullTime{Time: ride.CancelledAt, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		ride.OriginName,
		ride.OriginLat,
		ride.OriginLng,
		ride.DestName,
		ride.DestLat,
		ride.DestLng,
		ride.DepartureAt,
		ride.SeatsTotal,
		ride.PricePerSeat,
		ride.Notes,
		ride.Status,
		nullString(ride.VehicleID),
		cancelledAt,
		nullString(ride.CancelReason),
		ride.ID,
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

// UpdateBatch updates several rides at once.
func (r *RideRepository) UpdateBatch(ctx context.Context, rides []*domain.Ride) error {
	for _, ride := range rides {
		if err := r.Update(ctx, ride); err != nil {
			return err
		}
	}
	return nil
}

func (r *RideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var groupID, vehicleID, cancelReason sql.NullString
	var cancelledAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.PosterID,
		&ride.Role,
		&ride.OriginName,
		&ride.OriginLat,
		&ride.OriginLng,
		&ride.DestName,
		&ride.DestLat,
		&ride.DestLng,
		&ride.DepartureAt,
		&ride.SeatsTotal,
		&ride.PricePerSeat,
		&ride.Notes,
		&ride.Status,
		&groupID,
		&ride.IsRecurring,
		&ride.IsReturnLeg,
		&vehicleID,
		&ride.CreatedAt,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	ride.RoundTripGroupID = groupID.String
	ride.VehicleID = vehicleID.String
	ride.CancelReason = cancelReason.String
	if cancelledAt.Valid {
		ride.CancelledAt = cancelledAt.Time
	}
	return &ride, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
