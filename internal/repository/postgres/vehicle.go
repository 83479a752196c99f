package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

const vehicleColumns = `id, owner_id, make, model, color, year, seats, plate_hint, created_at`

// Create persists a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.OwnerID,
		vehicle.Make,
		vehicle.Model,
		nullString(vehicle.Color),
		vehicle.Year,
		vehicle.Seats,
		nullString(vehicle.PlateHint),
		vehicle.CreatedAt,
	)
	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	var vehicle domain.Vehicle
	var color, plateHint sql.NullString

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.OwnerID,
		&vehicle.Make,
		&vehicle.Model,
		&color,
		&vehicle.Year,
		&vehicle.Seats,
		&plateHint,
		&vehicle.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	vehicle.Color = color.String
	vehicle.PlateHint = plateHint.String
	return &vehicle, nil
}

// ListByOwner retrieves a user's vehicles.
func (r *VehicleRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var vehicle domain.Vehicle
		var color, plateHint sql.NullString
		if err := rows.Scan(
			&vehicle.ID,
			&vehicle.OwnerID,
			&vehicle.Make,
			&vehicle.Model,
			&color,
			&vehicle.Year,
			&vehicle.Seats,
			&plateHint,
			&vehicle.CreatedAt,
		); err != nil {
			return nil, err
		}
		vehicle.Color = color.String
		vehicle.PlateHint = plateHint.String
		vehicles = append(vehicles, &vehicle)
	}
	return vehicles, rows.Err()
}

// Delete removes a vehicle.
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
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
