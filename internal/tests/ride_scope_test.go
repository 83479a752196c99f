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
// SCOPED EDITS AND CANCELLATIONS
// ──────────────────────────────────────────────

// seedSeries persists a three-date recurring series for poster-1 and
// returns the row IDs in departure order.
func seedSeries(rideRepo *MockRideRepository) []string {
	base := time.Now().Add(24 * time.Hour)
	ids := []string{"s1", "s2", "s3"}
	for i, id := range ids {
		rideRepo.AddRide(&domain.Ride{
			ID:               id,
			PosterID:         "poster-1",
			Role:             domain.RideRoleDriver,
			OriginName:       "South Lake Tahoe",
			DestName:         "Reno",
			DepartureAt:      base.AddDate(0, 0, i*7),
			SeatsTotal:       3,
			Status:           domain.RideStatusActive,
			RoundTripGroupID: "series-1",
			IsRecurring:      true,
			CreatedAt:        time.Now(),
		})
	}
	return ids
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestEditRide_FutureScope_TouchesSelectedDateOnward(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, _, _ := newRideServiceForTest()
	seedSeries(rideRepo)

	updated, err := rideService.EditRide(context.Background(), service.EditRideRequest{
		RideID:     "s2",
		EditorID:   "poster-1",
		Scope:      service.ScopeFuture,
		SeatsTotal: intPtr(2),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(updated) != 2 {
		t.Fatalf("expected 2 updated rows, got %d", len(updated))
	}
	if rideRepo.GetRide("s1").SeatsTotal != 3 {
		t.Error("earlier date should be untouched")
	}
	if rideRepo.GetRide("s2").SeatsTotal != 2 || rideRepo.GetRide("s3").SeatsTotal != 2 {
		t.Error("selected date onward should carry the new seat count")
	}
}

func TestEditRide_AllScope_TimeOfDayKeepsDates(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, _, _ := newRideServiceForTest()
	seedSeries(rideRepo)
	originalDay := rideRepo.GetRide("s3").DepartureAt.Day()

	_, err := rideService.EditRide(context.Background(), service.EditRideRequest{
		RideID:    "s1",
		EditorID:  "poster-1",
		Scope:     service.ScopeAll,
		TimeOfDay: strPtr("06:45"),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	for _, id := range []string{"s1", "s2", "s3"} {
		d := rideRepo.GetRide(id).DepartureAt
		if d.Hour() != 6 || d.Minute() != 45 {
			t.Errorf("%s: expected 06:45 clock time, got %02d:%02d", id, d.Hour(), d.Minute())
		}
	}
	if rideRepo.GetRide("s3").DepartureAt.Day() != originalDay {
		t.Error("time-of-day edit must not move the date")
	}
}

func TestEditRide_DateChangeRequiresSingleScope(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, _, _ := newRideServiceForTest()
	seedSeries(rideRepo)

	_, err := rideService.EditRide(context.Background(), service.EditRideRequest{
		RideID:      "s2",
		EditorID:    "poster-1",
		Scope:       service.ScopeAll,
		DepartureAt: timePtr(time.Now().Add(72 * time.Hour)),
	})
	if !errors.Is(err, service.ErrDateChangeNeedsSingleScope) {
		t.Errorf("expected ErrDateChangeNeedsSingleScope, got %v", err)
	}
}

func TestEditRide_SeatDecreaseBelowConfirmed_FailsWithoutWrites(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, bookingRepo, _ := newRideServiceForTest()
	seedSeries(rideRepo)

	// s3 already has 3 confirmed seats; lowering the whole series to 2
	// must fail before any row is written.
	bookingRepo.AddBooking(&domain.Booking{
		ID: "b1", RideID: "s3", PassengerID: "pass-1",
		Seats: 3, Status: domain.BookingStatusConfirmed,
	})

	_, err := rideService.EditRide(context.Background(), service.EditRideRequest{
		RideID:     "s1",
		EditorID:   "poster-1",
		Scope:      service.ScopeAll,
		SeatsTotal: intPtr(2),
	})
	if !errors.Is(err, service.ErrSeatsBelowBooked) {
		t.Fatalf("expected ErrSeatsBelowBooked, got %v", err)
	}
	for _, id := range []string{"s1", "s2", "s3"} {
		if rideRepo.GetRide(id).SeatsTotal != 3 {
			t.Errorf("%s: no row should have been written", id)
		}
	}
}

func TestEditRide_NonOwner_Fails(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, _, _ := newRideServiceForTest()
	seedSeries(rideRepo)

	_, err := rideService.EditRide(context.Background(), service.EditRideRequest{
		RideID:     "s1",
		EditorID:   "somebody-else",
		Scope:      service.ScopeSingle,
		SeatsTotal: intPtr(2),
	})
	if !errors.Is(err, service.ErrNotRideOwner) {
		t.Errorf("expected ErrNotRideOwner, got %v", err)
	}
}

func TestEditRide_NotifiesActivePassengers(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, bookingRepo, emailRepo := newRideServiceForTest()
	seedSeries(rideRepo)

	bookingRepo.AddBooking(&domain.Booking{
		ID: "b1", RideID: "s2", PassengerID: "pass-1",
		Seats: 1, Status: domain.BookingStatusConfirmed,
	})
	bookingRepo.AddBooking(&domain.Booking{
		ID: "b2", RideID: "s2", PassengerID: "pass-2",
		Seats: 1, Status: domain.BookingStatusDeclined,
	})

	_, err := rideService.EditRide(context.Background(), service.EditRideRequest{
		RideID:       "s2",
		EditorID:     "poster-1",
		Scope:        service.ScopeSingle,
		PricePerSeat: floatPtr(20),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	events := emailRepo.EventsByKind(domain.EmailKindRideUpdated)
	if len(events) != 1 {
		t.Fatalf("expected 1 update email, got %d", len(events))
	}
	if events[0].RecipientID != "pass-1" {
		t.Errorf("expected email to the active passenger, got %s", events[0].RecipientID)
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestCancelRide_AllScope_CancelsRowsAndBookings(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, bookingRepo, emailRepo := newRideServiceForTest()
	seedSeries(rideRepo)

	bookingRepo.AddBooking(&domain.Booking{
		ID: "b1", RideID: "s1", PassengerID: "pass-1",
		Seats: 1, Status: domain.BookingStatusConfirmed,
	})
	bookingRepo.AddBooking(&domain.Booking{
		ID: "b2", RideID: "s3", PassengerID: "pass-2",
		Seats: 2, Status: domain.BookingStatusPending,
	})

	cancelled, err := rideService.CancelRide(context.Background(), service.CancelRideRequest{
		RideID:      "s1",
		RequesterID: "poster-1",
		Scope:       service.ScopeAll,
		Reason:      "car in the shop",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(cancelled) != 3 {
		t.Fatalf("expected 3 cancelled rows, got %d", len(cancelled))
	}
	for _, id := range []string{"s1", "s2", "s3"} {
		ride := rideRepo.GetRide(id)
		if ride.Status != domain.RideStatusCancelled {
			t.Errorf("%s: expected CANCELLED, got %s", id, ride.Status)
		}
		if ride.CancelReason != "car in the shop" {
			t.Errorf("%s: cancel reason not recorded", id)
		}
	}

	for _, id := range []string{"b1", "b2"} {
		booking := bookingRepo.GetBooking(id)
		if booking.Status != domain.BookingStatusCancelled {
			t.Errorf("%s: expected booking CANCELLED, got %s", id, booking.Status)
		}
		if booking.CancelReason != "ride cancelled" {
			t.Errorf("%s: expected 'ride cancelled' reason, got %q", id, booking.CancelReason)
		}
	}

	events := emailRepo.EventsByKind(domain.EmailKindRideCancelled)
	if len(events) != 2 {
		t.Errorf("expected 2 cancellation emails, got %d", len(events))
	}
}

func TestCancelRide_SingleScope_LeavesSiblingsAlone(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, _, _ := newRideServiceForTest()
	seedSeries(rideRepo)

	_, err := rideService.CancelRide(context.Background(), service.CancelRideRequest{
		RideID:      "s2",
		RequesterID: "poster-1",
		Scope:       service.ScopeSingle,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if rideRepo.GetRide("s2").Status != domain.RideStatusCancelled {
		t.Error("selected date should be cancelled")
	}
	if rideRepo.GetRide("s1").Status != domain.RideStatusActive ||
		rideRepo.GetRide("s3").Status != domain.RideStatusActive {
		t.Error("sibling dates should remain active")
	}
}

func TestCancelRide_AlreadyCancelled_Fails(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, _, _ := newRideServiceForTest()
	seedSeries(rideRepo)

	ride := rideRepo.GetRide("s1")
	ride.Status = domain.RideStatusCancelled

	_, err := rideService.CancelRide(context.Background(), service.CancelRideRequest{
		RideID:      "s1",
		RequesterID: "poster-1",
		Scope:       service.ScopeSingle,
	})
	if !errors.Is(err, service.ErrRideNotActive) {
		t.Errorf("expected ErrRideNotActive, got %v", err)
	}
}

func TestCompleteRide_BeforeDeparture_Fails(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, _, _ := newRideServiceForTest()
	rideRepo.AddRide(&domain.Ride{
		ID: "r1", PosterID: "poster-1", Role: domain.RideRoleDriver,
		Status: domain.RideStatusActive, DepartureAt: time.Now().Add(time.Hour),
		SeatsTotal: 3,
	})

	_, err := rideService.CompleteRide(context.Background(), "r1", "poster-1")
	if !errors.Is(err, service.ErrRideNotDeparted) {
		t.Errorf("expected ErrRideNotDeparted, got %v", err)
	}
}

func TestCompleteRide_AfterDeparture_Succeeds(t *testing.T) {
	t.Parallel()

	rideService, rideRepo, _, _ := newRideServiceForTest()
	rideRepo.AddRide(&domain.Ride{
		ID: "r1", PosterID: "poster-1", Role: domain.RideRoleDriver,
		Status: domain.RideStatusActive, DepartureAt: time.Now().Add(-time.Hour),
		SeatsTotal: 3,
	})

	ride, err := rideService.CompleteRide(context.Background(), "r1", "poster-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", ride.Status)
	}
}
