package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// ProfileRepository is a PostgreSQL implementation of repository.ProfileRepository.
type ProfileRepository struct {
	q Querier
}

// NewProfileRepository creates a new PostgreSQL profile repository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{q: db}
}

const profileColumns = `id, display_name, email, phone, phone_verified, bio, avatar_url, is_admin, banned, ban_reason, deactivated, deactivated_at, created_at`

// Create persists a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	var deactivatedAt sql.NullTime
	if !profile.DeactivatedAt.IsZero() {
		deactivatedAt = sql.NullTime{Time: profile.DeactivatedAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		profile.ID,
		profile.DisplayName,
		profile.Email,
		nullString(profile.Phone),
		profile.PhoneVerified,
		nullString(profile.Bio),
		nullString(profile.AvatarURL),
		profile.IsAdmin,
		profile.Banned,
		nullString(profile.BanReason),
		profile.Deactivated,
		deactivatedAt,
		profile.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a profile by email address.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// Update updates an existing profile.
func (r *ProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, phone = $2, phone_verified = $3, bio = $4, avatar_url = $5,
		    is_admin = $6, banned = $7, ban_reason = $8, deactivated = $9, deactivated_at = $10
		WHERE id = $11
	`

	var deactivatedAt sql.NullTime
	if !profile.DeactivatedAt.IsZero() {
		deactivatedAt = sql.NullTime{Time: profile.DeactivatedAt, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		profile.DisplayName,
		nullString(profile.Phone),
		profile.PhoneVerified,
		nullString(profile.Bio),
		nullString(profile.AvatarURL),
		profile.IsAdmin,
		profile.Banned,
		nullString(profile.BanReason),
		profile.Deactivated,
		deactivatedAt,
		profile.ID,
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

func (r *ProfileRepository) getOne(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	var profile domain.Profile
	var phone, bio, avatarURL, banReason sql.NullString
	var deactivatedAt sql.NullTime

	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&profile.ID,
		&profile.DisplayName,
		&profile.Email,
		&phone,
		&profile.PhoneVerified,
		&bio,
		&avatarURL,
		&profile.IsAdmin,
		&profile.Banned,
		&banReason,
		&profile.Deactivated,
		&deactivatedAt,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	profile.Phone = phone.String
	profile.Bio = bio.String
	profile.AvatarURL = avatarURL.String
	profile.BanReason = banReason.String
	if deactivatedAt.Valid {
		profile.DeactivatedAt = deactivatedAt.Time
	}
	return &profile, nil
}
