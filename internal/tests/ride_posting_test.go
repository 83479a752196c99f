package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// 1. RIDE POSTING CREATION
// ──────────────────────────────────────────────

func newRideServiceForTest() (*service.RideService, *MockRideRepository, *MockBookingRepository, *MockEmailRepository) {
	rideRepo := NewMockRideRepository()
	bookingRepo := NewMockBookingRepository()
	blockRepo := NewMockBlockRepository()
	vehicleRepo := NewMockVehicleRepository()
	emailRepo := NewMockEmailRepository()
	emails := service.NewEmailService(emailRepo)

	rideService := service.NewRideService(nil, rideRepo, bookingRepo, blockRepo, vehicleRepo, emails)
	return rideService, rideRepo, bookingRepo, emailRepo
}

func tahoe() service.PlaceInput {
	return service.PlaceInput{Name: "South Lake Tahoe", Lat: 38.9399, Lng: -119.9772}
}

func reno() service.PlaceInput {
	return service.PlaceInput{Name: "Reno", Lat: 39.5296, Lng: -119.8138}
}

func validCreateRequest() service.CreateRideRequest {
	return service.CreateRideRequest{
		PosterID:     "poster-1",
		Role:         domain.RideRoleDriver,
		Origin:       tahoe(),
		Dest:         reno(),
		DepartureAt:  time.Now().Add(48 * time.Hour),
		SeatsTotal:   3,
		PricePerSeat: 15,
	}
}

func TestCreateRide_Single_Succeeds(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, _, _ := newRideServiceForTest()

	rides, err := rideService.CreateRide(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(rides) != 1 {
		t.Fatalf("expected 1 ride, got %d", len(rides))
	}
	if rides[0].ID == "" {
		t.Error("expected ride ID to be set")
	}
	if rides[0].RoundTripGroupID != "" {
		t.Error("standalone ride should not carry a group ID")
	}
	if rides[0].Status != domain.RideStatusActive {
		t.Errorf("expected ACTIVE status, got %s", rides[0].Status)
	}
	if rideRepo.CountRides() != 1 {
		t.Errorf("expected 1 persisted ride, got %d", rideRepo.CountRides())
	}
}

func TestCreateRide_RoundTrip_CreatesMirroredLegs(t *testing.T) {
	t.Parallel()

	rideService, _, _, _ := newRideServiceForTest()

	req := validCreateRequest()
	req.ReturnAt = req.DepartureAt.Add(8 * time.Hour)

	rides, err := rideService.CreateRide(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(rides) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(rides))
	}

	outbound, ret := rides[0], rides[1]
	if outbound.RoundTripGroupID == "" || outbound.RoundTripGroupID != ret.RoundTripGroupID {
		t.Error("legs should share a group ID")
	}
	if outbound.IsReturnLeg || !ret.IsReturnLeg {
		t.Error("second leg should be flagged as the return leg")
	}
	if ret.OriginName != outbound.DestName || ret.DestName != outbound.OriginName {
		t.Error("return leg should mirror origin and destination")
	}
	if outbound.IsRecurring || ret.IsRecurring {
		t.Error("round-trip legs must not be flagged recurring")
	}
}

func TestCreateRide_Series_OneRowPerDate(t *testing.T) {
	t.Parallel()

	rideService, _, _, _ := newRideServiceForTest()

	req := validCreateRequest()
	req.ExtraDates = []time.Time{
		req.DepartureAt.AddDate(0, 0, 7),
		req.DepartureAt.AddDate(0, 0, 14),
	}

	rides, err := rideService.CreateRide(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(rides) != 3 {
		t.Fatalf("expected 3 series rows, got %d", len(rides))
	}
	groupID := rides[0].RoundTripGroupID
	for i, ride := range rides {
		if ride.RoundTripGroupID != groupID || groupID == "" {
			t.Errorf("row %d: series rows should share a group ID", i)
		}
		if !ride.IsRecurring {
			t.Errorf("row %d: series rows should be flagged recurring", i)
		}
		if ride.IsReturnLeg {
			t.Errorf("row %d: series rows must not be return legs", i)
		}
	}
}

func TestCreateRide_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*service.CreateRideRequest)
		wantErr error
	}{
		{
			name:    "missing poster",
			mutate:  func(r *service.CreateRideRequest) { r.PosterID = "" },
			wantErr: service.ErrInvalidPosterID,
		},
		{
			name:    "bad role",
			mutate:  func(r *service.CreateRideRequest) { r.Role = "PILOT" },
			wantErr: service.ErrInvalidRole,
		},
		{
			name:    "origin latitude out of range",
			mutate:  func(r *service.CreateRideRequest) { r.Origin.Lat = 95 },
			wantErr: service.ErrInvalidOrigin,
		},
		{
			name:    "destination without a name",
			mutate:  func(r *service.CreateRideRequest) { r.Dest.Name = "" },
			wantErr: service.ErrInvalidDestination,
		},
		{
			name:    "departure in the past",
			mutate:  func(r *service.CreateRideRequest) { r.DepartureAt = time.Now().Add(-time.Hour) },
			wantErr: service.ErrDepartureInPast,
		},
		{
			name:    "zero seats",
			mutate:  func(r *service.CreateRideRequest) { r.SeatsTotal = 0 },
			wantErr: service.ErrInvalidSeats,
		},
		{
			name:    "too many seats",
			mutate:  func(r *service.CreateRideRequest) { r.SeatsTotal = 9 },
			wantErr: service.ErrInvalidSeats,
		},
		{
			name: "return before outbound",
			mutate: func(r *service.CreateRideRequest) {
				r.ReturnAt = r.DepartureAt.Add(-time.Hour)
			},
			wantErr: service.ErrReturnBeforeOutbound,
		},
		{
			name: "series mixed with return leg",
			mutate: func(r *service.CreateRideRequest) {
				r.ReturnAt = r.DepartureAt.Add(time.Hour)
				r.ExtraDates = []time.Time{r.DepartureAt.AddDate(0, 0, 7)}
			},
			wantErr: service.ErrSeriesWithReturn,
		},
		{
			name: "extra date in the past",
			mutate: func(r *service.CreateRideRequest) {
				r.ExtraDates = []time.Time{time.Now().Add(-time.Hour)}
			},
			wantErr: service.ErrDepartureInPast,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rideService, rideRepo, _, _ := newRideServiceForTest()

			req := validCreateRequest()
			tc.mutate(&req)

			_, err := rideService.CreateRide(context.Background(), req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if rideRepo.CountRides() != 0 {
				t.Error("nothing should be persisted on validation failure")
			}
		})
	}
}

func TestCreateRide_SomeoneElsesVehicle_Fails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	vehicleRepo := NewMockVehicleRepository()
	vehicleRepo.AddVehicle(&domain.Vehicle{ID: "v1", OwnerID: "other-user", Seats: 4})
	emails := service.NewEmailService(NewMockEmailRepository())

	rideService := service.NewRideService(nil, rideRepo, NewMockBookingRepository(), NewMockBlockRepository(), vehicleRepo, emails)

	req := validCreateRequest()
	req.VehicleID = "v1"

	_, err := rideService.CreateRide(context.Background(), req)
	if !errors.Is(err, service.ErrNotVehicleOwner) {
		t.Errorf("expected ErrNotVehicleOwner, got %v", err)
	}
}

func TestCreateRide_NotesAreSanitized(t *testing.T) {
	t.Parallel()

	rideService, _, _, _ := newRideServiceForTest()

	req := validCreateRequest()
	req.Notes = "text me at 530-555-0134 or mail sam@example.com"

	rides, err := rideService.CreateRide(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if rides[0].Notes != "text me at [removed] or mail [removed]" {
		t.Errorf("notes not sanitized: %q", rides[0].Notes)
	}
}

// ──────────────────────────────────────────────
// 2. SEARCH AND VISIBILITY
// ──────────────────────────────────────────────

func TestSearch_NewestPostingFirst(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	emails := service.NewEmailService(NewMockEmailRepository())
	rideService := service.NewRideService(nil, rideRepo, NewMockBookingRepository(), NewMockBlockRepository(), NewMockVehicleRepository(), emails)

	// The older posting departs sooner; posting order, not departure
	// order, decides the listing.
	rideRepo.AddRide(&domain.Ride{
		ID: "older-posting", PosterID: "p1", Role: domain.RideRoleDriver,
		Status: domain.RideStatusActive, SeatsTotal: 3,
		DepartureAt: time.Now().Add(6 * time.Hour),
		CreatedAt:   time.Now().Add(-2 * time.Hour),
	})
	rideRepo.AddRide(&domain.Ride{
		ID: "newer-posting", PosterID: "p2", Role: domain.RideRoleDriver,
		Status: domain.RideStatusActive, SeatsTotal: 3,
		DepartureAt: time.Now().Add(48 * time.Hour),
		CreatedAt:   time.Now().Add(-time.Hour),
	})

	listed, err := rideService.Search(context.Background(), service.SearchRequest{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 rides, got %d", len(listed))
	}
	if listed[0].Ride.ID != "newer-posting" || listed[1].Ride.ID != "older-posting" {
		t.Errorf("expected newest posting first, got %s then %s", listed[0].Ride.ID, listed[1].Ride.ID)
	}
}

func TestSearch_OriginProximityFilter(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	emails := service.NewEmailService(NewMockEmailRepository())
	rideService := service.NewRideService(nil, rideRepo, NewMockBookingRepository(), NewMockBlockRepository(), NewMockVehicleRepository(), emails)

	departure := time.Now().Add(24 * time.Hour)
	// Stateline is a few km from the South Lake Tahoe search point;
	// Reno is roughly 65 km north.
	rideRepo.AddRide(&domain.Ride{
		ID: "nearby", PosterID: "p1", Role: domain.RideRoleDriver,
		OriginName: "Stateline", OriginLat: 38.9624, OriginLng: -119.9399,
		Status: domain.RideStatusActive, DepartureAt: departure, SeatsTotal: 3,
	})
	rideRepo.AddRide(&domain.Ride{
		ID: "far", PosterID: "p2", Role: domain.RideRoleDriver,
		OriginName: "Reno", OriginLat: 39.5296, OriginLng: -119.8138,
		Status: domain.RideStatusActive, DepartureAt: departure, SeatsTotal: 3,
	})

	listed, err := rideService.Search(context.Background(), service.SearchRequest{
		NearLat:  38.9399,
		NearLng:  -119.9772,
		RadiusKm: 10,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(listed) != 1 || listed[0].Ride.ID != "nearby" {
		t.Fatalf("expected only the in-radius ride, got %d rides", len(listed))
	}

	// A wider radius picks up both.
	listed, err = rideService.Search(context.Background(), service.SearchRequest{
		NearLat:  38.9399,
		NearLng:  -119.9772,
		RadiusKm: 100,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("expected both rides within 100 km, got %d", len(listed))
	}
}

func TestSearch_HidesBlockedPosters(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	blockRepo := NewMockBlockRepository()
	emails := service.NewEmailService(NewMockEmailRepository())
	rideService := service.NewRideService(nil, rideRepo, NewMockBookingRepository(), blockRepo, NewMockVehicleRepository(), emails)

	departure := time.Now().Add(24 * time.Hour)
	rideRepo.AddRide(&domain.Ride{
		ID: "r1", PosterID: "friendly", Role: domain.RideRoleDriver,
		Status: domain.RideStatusActive, DepartureAt: departure, SeatsTotal: 3,
	})
	rideRepo.AddRide(&domain.Ride{
		ID: "r2", PosterID: "hostile", Role: domain.RideRoleDriver,
		Status: domain.RideStatusActive, DepartureAt: departure, SeatsTotal: 3,
	})
	blockRepo.AddBlock("viewer", "hostile")

	listed, err := rideService.Search(context.Background(), service.SearchRequest{ViewerID: "viewer"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(listed) != 1 || listed[0].Ride.ID != "r1" {
		t.Errorf("expected only the unblocked poster's ride, got %d rides", len(listed))
	}
}

func TestSearch_MinFreeSeatsFilter(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	bookingRepo := NewMockBookingRepository()
	emails := service.NewEmailService(NewMockEmailRepository())
	rideService := service.NewRideService(nil, rideRepo, bookingRepo, NewMockBlockRepository(), NewMockVehicleRepository(), emails)

	departure := time.Now().Add(24 * time.Hour)
	rideRepo.AddRide(&domain.Ride{
		ID: "full", PosterID: "p1", Role: domain.RideRoleDriver,
		Status: domain.RideStatusActive, DepartureAt: departure, SeatsTotal: 2,
	})
	rideRepo.AddRide(&domain.Ride{
		ID: "open", PosterID: "p2", Role: domain.RideRoleDriver,
		Status: domain.RideStatusActive, DepartureAt: departure, SeatsTotal: 4,
	})
	bookingRepo.AddBooking(&domain.Booking{
		ID: "b1", RideID: "full", PassengerID: "pass-1",
		Seats: 2, Status: domain.BookingStatusConfirmed,
	})

	listed, err := rideService.Search(context.Background(), service.SearchRequest{MinFreeSeats: 1})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(listed) != 1 || listed[0].Ride.ID != "open" {
		t.Fatalf("expected only the ride with free seats, got %d rides", len(listed))
	}
	if listed[0].SeatsFree != 4 {
		t.Errorf("expected 4 free seats, got %d", listed[0].SeatsFree)
	}
}
