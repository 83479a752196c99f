package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// PROFILES, VEHICLES, AND BLOCKS
// ──────────────────────────────────────────────

func newProfileFixture() (*service.ProfileService, *MockProfileRepository, *MockVehicleRepository, *MockBlockRepository) {
	profileRepo := NewMockProfileRepository()
	vehicleRepo := NewMockVehicleRepository()
	blockRepo := NewMockBlockRepository()
	emails := service.NewEmailService(NewMockEmailRepository())
	svc := service.NewProfileService(profileRepo, vehicleRepo, blockRepo,
		NewMockRideRepository(), NewMockBookingRepository(), emails)
	return svc, profileRepo, vehicleRepo, blockRepo
}

func TestRegister_Succeeds(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newProfileFixture()

	profile, err := svc.Register(context.Background(), service.RegisterRequest{
		DisplayName: "Pat",
		Email:       "Pat@Example.com",
		Bio:         "ski bum, text me at 530-555-0134",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if profile.ID == "" {
		t.Error("expected a generated ID")
	}
	if profile.Email != "pat@example.com" {
		t.Errorf("expected lowercased email, got %s", profile.Email)
	}
	if profile.Bio != "ski bum, text me at [removed]" {
		t.Errorf("bio should be sanitized, got %q", profile.Bio)
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newProfileFixture()

	tests := []struct {
		name    string
		req     service.RegisterRequest
		wantErr error
	}{
		{
			name:    "blank display name",
			req:     service.RegisterRequest{DisplayName: "  ", Email: "a@example.com"},
			wantErr: service.ErrInvalidDisplayName,
		},
		{
			name:    "malformed email",
			req:     service.RegisterRequest{DisplayName: "Pat", Email: "not-an-address"},
			wantErr: service.ErrInvalidEmail,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegister_DuplicateEmail_Fails(t *testing.T) {
	t.Parallel()

	svc, profileRepo, _, _ := newProfileFixture()
	profileRepo.AddProfile(&domain.Profile{ID: "existing", Email: "pat@example.com"})

	_, err := svc.Register(context.Background(), service.RegisterRequest{
		DisplayName: "Pat",
		Email:       "PAT@example.com",
	})
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateProfile_PhoneChangeResetsVerification(t *testing.T) {
	t.Parallel()

	svc, profileRepo, _, _ := newProfileFixture()
	profileRepo.AddProfile(&domain.Profile{
		ID: "user-1", DisplayName: "Pat", Email: "pat@example.com",
		Phone: "530-555-0100", PhoneVerified: true,
	})

	profile, err := svc.Update(context.Background(), service.UpdateProfileRequest{
		UserID: "user-1",
		Phone:  strPtr("530-555-0199"),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if profile.PhoneVerified {
		t.Error("changing the phone number should reset verification")
	}

	// Updating other fields leaves verification alone.
	profileRepo.GetProfile("user-1").PhoneVerified = true
	profile, err = svc.Update(context.Background(), service.UpdateProfileRequest{
		UserID: "user-1",
		Bio:    strPtr("new bio"),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !profile.PhoneVerified {
		t.Error("a bio edit must not touch phone verification")
	}
}

func TestDeactivate_CancelsActivityAndFlagsProfile(t *testing.T) {
	t.Parallel()

	profileRepo := NewMockProfileRepository()
	rideRepo := NewMockRideRepository()
	bookingRepo := NewMockBookingRepository()
	emailRepo := NewMockEmailRepository()
	emails := service.NewEmailService(emailRepo)
	svc := service.NewProfileService(profileRepo, NewMockVehicleRepository(), NewMockBlockRepository(),
		rideRepo, bookingRepo, emails)

	profileRepo.AddProfile(&domain.Profile{ID: "user-1", Email: "u1@example.com"})
	profileRepo.AddProfile(&domain.Profile{ID: "driver-2", Email: "d2@example.com"})

	// user-1's own active posting, with a confirmed passenger.
	rideRepo.AddRide(&domain.Ride{
		ID: "r1", PosterID: "user-1", Role: domain.RideRoleDriver,
		OriginName: "South Lake Tahoe", DestName: "Reno",
		DepartureAt: time.Now().Add(24 * time.Hour),
		SeatsTotal:  3, Status: domain.RideStatusActive,
	})
	bookingRepo.AddBooking(&domain.Booking{
		ID: "b1", RideID: "r1", PassengerID: "pass-1",
		Seats: 1, Status: domain.BookingStatusConfirmed,
	})

	// A seat user-1 holds on someone else's ride.
	rideRepo.AddRide(&domain.Ride{
		ID: "r2", PosterID: "driver-2", Role: domain.RideRoleDriver,
		OriginName: "Truckee", DestName: "Sacramento",
		DepartureAt: time.Now().Add(48 * time.Hour),
		SeatsTotal:  3, Status: domain.RideStatusActive,
	})
	bookingRepo.AddBooking(&domain.Booking{
		ID: "b2", RideID: "r2", PassengerID: "user-1",
		Seats: 2, Status: domain.BookingStatusConfirmed,
	})

	profile, err := svc.Deactivate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !profile.Deactivated || profile.DeactivatedAt.IsZero() {
		t.Error("profile should be flagged with a deactivation timestamp")
	}

	if rideRepo.GetRide("r1").Status != domain.RideStatusCancelled {
		t.Error("own active posting should be cancelled")
	}
	if rideRepo.GetRide("r1").CancelReason != "account deactivated" {
		t.Errorf("unexpected cancel reason %q", rideRepo.GetRide("r1").CancelReason)
	}
	if rideRepo.GetRide("r2").Status != domain.RideStatusActive {
		t.Error("someone else's ride must stay active")
	}

	if bookingRepo.GetBooking("b1").Status != domain.BookingStatusCancelled {
		t.Error("booking on the cancelled posting should be cancelled")
	}
	if got := bookingRepo.GetBooking("b2"); got.Status != domain.BookingStatusCancelled || got.CancelReason != "passenger deactivated" {
		t.Errorf("held seat should be released, got %s / %q", got.Status, got.CancelReason)
	}

	cancelled := emailRepo.EventsByKind(domain.EmailKindRideCancelled)
	if len(cancelled) != 1 || cancelled[0].RecipientID != "pass-1" {
		t.Error("affected passenger should be notified")
	}
	released := emailRepo.EventsByKind(domain.EmailKindBookingCancelled)
	if len(released) != 1 || released[0].RecipientID != "driver-2" {
		t.Error("poster of the held seat should be notified")
	}
}

func TestDeactivate_UnknownUser_Fails(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newProfileFixture()

	if _, err := svc.Deactivate(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteVehicle_OwnerOnly(t *testing.T) {
	t.Parallel()

	svc, _, vehicleRepo, _ := newProfileFixture()
	vehicleRepo.AddVehicle(&domain.Vehicle{ID: "v1", OwnerID: "user-1", Make: "Subaru", Model: "Outback", Seats: 4})

	if err := svc.DeleteVehicle(context.Background(), "v1", "user-2"); !errors.Is(err, service.ErrNotVehicleOwner) {
		t.Errorf("expected ErrNotVehicleOwner, got %v", err)
	}
	if err := svc.DeleteVehicle(context.Background(), "v1", "user-1"); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}

func TestBlock_IsIdempotent(t *testing.T) {
	t.Parallel()

	svc, profileRepo, _, blockRepo := newProfileFixture()
	profileRepo.AddProfile(&domain.Profile{ID: "user-2", Email: "b@example.com"})

	if err := svc.Block(context.Background(), "user-1", "user-2"); err != nil {
		t.Fatalf("first block failed: %v", err)
	}
	if err := svc.Block(context.Background(), "user-1", "user-2"); err != nil {
		t.Errorf("repeated block should be a no-op, got: %v", err)
	}

	blocks, err := blockRepo.ListByBlocker(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(blocks) != 1 {
		t.Errorf("expected 1 block row, got %d", len(blocks))
	}
}

func TestBlock_Rejections(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newProfileFixture()

	if err := svc.Block(context.Background(), "user-1", "user-1"); !errors.Is(err, service.ErrSelfBlock) {
		t.Errorf("expected ErrSelfBlock, got %v", err)
	}
	// Unknown target.
	if err := svc.Block(context.Background(), "user-1", "ghost"); err == nil {
		t.Error("blocking an unknown user should fail")
	}
}
