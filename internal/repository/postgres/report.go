package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// ReportRepository is a PostgreSQL implementation of repository.ReportRepository.
type ReportRepository struct {
	q Querier
}

// NewReportRepository creates a new PostgreSQL report repository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{q: db}
}

const reportColumns = `id, reporter_id, reported_id, ride_id, reason, details, status, resolution, resolved_by, created_at, resolved_at`

// Create persists a new report.
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		report.ID,
		report.ReporterID,
		report.ReportedID,
		nullString(report.RideID),
		report.Reason,
		nullString(report.Details),
		report.Status,
		nullString(report.Resolution),
		nullString(report.ResolvedBy),
		report.CreatedAt,
		nullTime(report.ResolvedAt),
	)
	return err
}

// GetByID retrieves a report by ID.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

// ListOpen retrieves all OPEN reports, oldest first.
func (r *ReportRepository) ListOpen(ctx context.Context) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE status = $1 ORDER BY created_at ASC`

	rows, err := r.q.QueryContext(ctx, query, domain.ReportStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// Update updates an existing report.
func (r *ReportRepository) Update(ctx context.Context, report *domain.Report) error {
	query := `
		UPDATE reports
		SET status = $1, resolution = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		report.Status,
		nullString(report.Resolution),
		nullString(report.ResolvedBy),
		nullTime(report.ResolvedAt),
		report.ID,
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

func scanReport(row rowScanner) (*domain.Report, error) {
	var report domain.Report
	var rideID, details, resolution, resolvedBy sql.NullString
	var resolvedAt sql.NullTime

	err := row.Scan(
		&report.ID,
		&report.ReporterID,
		&report.ReportedID,
		&rideID,
		&report.Reason,
		&details,
		&report.Status,
		&resolution,
		&resolvedBy,
		&report.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	report.RideID = rideID.String
	report.Details = details.String
	report.Resolution = resolution.String
	report.ResolvedBy = resolvedBy.String
	if resolvedAt.Valid {
		report.ResolvedAt = resolvedAt.Time
	}
	return &report, nil
}
