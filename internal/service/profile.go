package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// ProfileService handles profiles, vehicles, and user blocks.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	vehicleRepo repository.VehicleRepository
	blockRepo   repository.BlockRepository
	rideRepo    repository.RideRepository
	bookingRepo repository.BookingRepository
	emails      *EmailService
}

// NewProfileService creates a new ProfileService.
func NewProfileService(
	profileRepo repository.ProfileRepository,
	vehicleRepo repository.VehicleRepository,
	blockRepo repository.BlockRepository,
	rideRepo repository.RideRepository,
	bookingRepo repository.BookingRepository,
	emails *EmailService,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		vehicleRepo: vehicleRepo,
		blockRepo:   blockRepo,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		emails:      emails,
	}
}

// RegisterRequest contains the parameters for creating a profile.
type RegisterRequest struct {
	DisplayName string
	Email       string
	Phone       string
	Bio         string
	AvatarURL   string
}

// Register creates a new profile.
func (s *ProfileService) Register(ctx context.Context, req RegisterRequest) (*domain.Profile, error) {
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, ErrInvalidDisplayName
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	profile := &domain.Profile{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		Email:       email,
		Phone:       req.Phone,
		Bio:         SanitizeText(req.Bio),
		AvatarURL:   req.AvatarURL,
		CreatedAt:   time.Now(),
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return profile, nil
}

// Get retrieves a profile by ID.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	if id == "" {
		return nil, ErrInvalidPosterID
	}
	return s.profileRepo.GetByID(ctx, id)
}

// UpdateProfileRequest contains a partial profile update. Nil fields
// are unchanged.
type UpdateProfileRequest struct {
	UserID      string
	DisplayName *string
	Phone       *string
	Bio         *string
	AvatarURL   *string
}

// Update applies a partial update to the user's own profile.
func (s *ProfileService) Update(ctx context.Context, req UpdateProfileRequest) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		displayName := strings.TrimSpace(*req.DisplayName)
		if displayName == "" {
			return nil, ErrInvalidDisplayName
		}
		profile.DisplayName = displayName
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
		profile.PhoneVerified = false
	}
	if req.Bio != nil {
		profile.Bio = SanitizeText(*req.Bio)
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Deactivate closes the user's own account: the profile is flagged,
// their active postings are cancelled (with booking cascade and
// passenger notifications), and any seats they hold on other rides are
// released.
func (s *ProfileService) Deactivate(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Deactivated = true
	profile.DeactivatedAt = time.Now()
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	rides, err := s.rideRepo.ListByPoster(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, ride := range rides {
		if ride.Status != domain.RideStatusActive {
			continue
		}
		ride.Status = domain.RideStatusCancelled
		ride.CancelledAt = now
		ride.CancelReason = "account deactivated"
		if err := s.rideRepo.Update(ctx, ride); err != nil {
			return nil, err
		}

		bookings, err := s.bookingRepo.ListByRide(ctx, ride.ID)
		if err != nil {
			return nil, err
		}
		for _, booking := range bookings {
			if !booking.Active() {
				continue
			}
			booking.Status = domain.BookingStatusCancelled
			booking.CancelledAt = now
			booking.CancelReason = "ride cancelled"
			if err := s.bookingRepo.Update(ctx, booking); err != nil {
				return nil, err
			}
			s.emails.Enqueue(ctx, booking.PassengerID, domain.EmailKindRideCancelled,
				"Your ride was cancelled",
				fmt.Sprintf("The ride %s to %s on %s is no longer available.",
					ride.OriginName, ride.DestName, ride.DepartureAt.Format("Mon Jan 2 15:04")))
		}
	}

	// Seats held as a passenger on other users' rides.
	held, err := s.bookingRepo.ListByPassenger(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, booking := range held {
		if !booking.Active() {
			continue
		}
		booking.Status = domain.BookingStatusCancelled
		booking.CancelledAt = now
		booking.CancelReason = "passenger deactivated"
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
		if ride, err := s.rideRepo.GetByID(ctx, booking.RideID); err == nil {
			s.emails.Enqueue(ctx, ride.PosterID, domain.EmailKindBookingCancelled,
				"A booking on your ride was cancelled",
				fmt.Sprintf("A passenger released %d seat(s) on your ride %s to %s.",
					booking.Seats, ride.OriginName, ride.DestName))
		}
	}

	return profile, nil
}

// AddVehicleRequest contains the parameters for adding a vehicle.
type AddVehicleRequest struct {
	OwnerID   string
	Make      string
	Model     string
	Color     string
	Year      int
	Seats     int
	PlateHint string
}

// AddVehicle registers a vehicle for the user.
func (s *ProfileService) AddVehicle(ctx context.Context, req AddVehicleRequest) (*domain.Vehicle, error) {
	if req.OwnerID == "" {
		return nil, ErrInvalidPosterID
	}
	if req.Seats < 1 || req.Seats > maxSeats {
		return nil, ErrInvalidSeats
	}

	vehicle := &domain.Vehicle{
		ID:        uuid.New().String(),
		OwnerID:   req.OwnerID,
		Make:      req.Make,
		Model:     req.Model,
		Color:     req.Color,
		Year:      req.Year,
		Seats:     req.Seats,
		PlateHint: req.PlateHint,
		CreatedAt: time.Now(),
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

// ListVehicles returns the user's vehicles.
func (s *ProfileService) ListVehicles(ctx context.Context, ownerID string) ([]*domain.Vehicle, error) {
	if ownerID == "" {
		return nil, ErrInvalidPosterID
	}
	return s.vehicleRepo.ListByOwner(ctx, ownerID)
}

// DeleteVehicle removes a vehicle. Owner-only.
func (s *ProfileService) DeleteVehicle(ctx context.Context, vehicleID, ownerID string) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle.OwnerID != ownerID {
		return ErrNotVehicleOwner
	}
	return s.vehicleRepo.Delete(ctx, vehicleID)
}

// Block hides two users from each other. Idempotent.
func (s *ProfileService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == "" || blockedID == "" {
		return ErrInvalidPosterID
	}
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	// The target must exist.
	if _, err := s.profileRepo.GetByID(ctx, blockedID); err != nil {
		return err
	}

	err := s.blockRepo.Create(ctx, &domain.UserBlock{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil
	}
	return err
}

// Unblock removes a block the user placed.
func (s *ProfileService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == "" || blockedID == "" {
		return ErrInvalidPosterID
	}
	return s.blockRepo.Delete(ctx, blockerID, blockedID)
}

// ListBlocks returns the blocks the user has placed.
func (s *ProfileService) ListBlocks(ctx context.Context, blockerID string) ([]*domain.UserBlock, error) {
	if blockerID == "" {
		return nil, ErrInvalidPosterID
	}
	return s.blockRepo.ListByBlocker(ctx, blockerID)
}
