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
// REPORTS AND BANS
// ──────────────────────────────────────────────

type moderationFixture struct {
	service     *service.ModerationService
	reportRepo  *MockReportRepository
	profileRepo *MockProfileRepository
	rideRepo    *MockRideRepository
	bookingRepo *MockBookingRepository
	emailRepo   *MockEmailRepository
}

func newModerationFixture() *moderationFixture {
	f := &moderationFixture{
		reportRepo:  NewMockReportRepository(),
		profileRepo: NewMockProfileRepository(),
		rideRepo:    NewMockRideRepository(),
		bookingRepo: NewMockBookingRepository(),
		emailRepo:   NewMockEmailRepository(),
	}
	emails := service.NewEmailService(f.emailRepo)
	f.service = service.NewModerationService(f.reportRepo, f.profileRepo, f.rideRepo, f.bookingRepo, emails)

	f.profileRepo.AddProfile(&domain.Profile{ID: "admin-1", Email: "admin@example.com", IsAdmin: true})
	f.profileRepo.AddProfile(&domain.Profile{ID: "user-1", Email: "user1@example.com"})
	f.profileRepo.AddProfile(&domain.Profile{ID: "user-2", Email: "user2@example.com"})
	return f
}

func TestCreateReport_Succeeds(t *testing.T) {
	t.Parallel()

	f := newModerationFixture()

	report, err := f.service.CreateReport(context.Background(), service.CreateReportRequest{
		ReporterID: "user-1",
		ReportedID: "user-2",
		Reason:     "no-show",
		Details:    "waited 30 minutes at the meeting point",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if report.Status != domain.ReportStatusOpen {
		t.Errorf("expected OPEN, got %s", report.Status)
	}
}

func TestCreateReport_Rejections(t *testing.T) {
	t.Parallel()

	f := newModerationFixture()

	if _, err := f.service.CreateReport(context.Background(), service.CreateReportRequest{
		ReporterID: "user-1",
		ReportedID: "user-1",
		Reason:     "spam",
	}); !errors.Is(err, service.ErrSelfReport) {
		t.Errorf("expected ErrSelfReport, got %v", err)
	}

	if _, err := f.service.CreateReport(context.Background(), service.CreateReportRequest{
		ReporterID: "user-1",
		ReportedID: "user-2",
		Reason:     "   ",
	}); !errors.Is(err, service.ErrInvalidReason) {
		t.Errorf("expected ErrInvalidReason, got %v", err)
	}
}

func TestOpenReports_AdminOnly(t *testing.T) {
	t.Parallel()

	f := newModerationFixture()

	if _, err := f.service.OpenReports(context.Background(), "user-1"); !errors.Is(err, service.ErrNotAdmin) {
		t.Errorf("expected ErrNotAdmin, got %v", err)
	}
	if _, err := f.service.OpenReports(context.Background(), "admin-1"); err != nil {
		t.Errorf("admin listing failed: %v", err)
	}
}

func TestResolveReport_ClosesOnce(t *testing.T) {
	t.Parallel()

	f := newModerationFixture()
	f.reportRepo.AddReport(&domain.Report{
		ID: "rep-1", ReporterID: "user-1", ReportedID: "user-2",
		Reason: "spam", Status: domain.ReportStatusOpen, CreatedAt: time.Now(),
	})

	report, err := f.service.ResolveReport(context.Background(), service.ResolveReportRequest{
		ReportID:   "rep-1",
		AdminID:    "admin-1",
		Resolution: "warned the user",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if report.Status != domain.ReportStatusResolved {
		t.Errorf("expected RESOLVED, got %s", report.Status)
	}
	if report.ResolvedBy != "admin-1" {
		t.Errorf("expected resolver to be recorded, got %s", report.ResolvedBy)
	}

	if _, err := f.service.ResolveReport(context.Background(), service.ResolveReportRequest{
		ReportID: "rep-1",
		AdminID:  "admin-1",
	}); !errors.Is(err, service.ErrReportClosed) {
		t.Errorf("expected ErrReportClosed, got %v", err)
	}
}

func TestResolveReport_Dismiss(t *testing.T) {
	t.Parallel()

	f := newModerationFixture()
	f.reportRepo.AddReport(&domain.Report{
		ID: "rep-1", ReporterID: "user-1", ReportedID: "user-2",
		Reason: "spam", Status: domain.ReportStatusOpen, CreatedAt: time.Now(),
	})

	report, err := f.service.ResolveReport(context.Background(), service.ResolveReportRequest{
		ReportID: "rep-1",
		AdminID:  "admin-1",
		Dismiss:  true,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if report.Status != domain.ReportStatusDismissed {
		t.Errorf("expected DISMISSED, got %s", report.Status)
	}
}

func TestBanUser_CancelsPostingsAndNotifiesPassengers(t *testing.T) {
	t.Parallel()

	f := newModerationFixture()
	f.rideRepo.AddRide(&domain.Ride{
		ID: "r1", PosterID: "user-2", Role: domain.RideRoleDriver,
		OriginName: "South Lake Tahoe", DestName: "Reno",
		DepartureAt: time.Now().Add(24 * time.Hour),
		SeatsTotal:  3, Status: domain.RideStatusActive,
	})
	f.rideRepo.AddRide(&domain.Ride{
		ID: "r2", PosterID: "user-2", Role: domain.RideRoleDriver,
		DepartureAt: time.Now().Add(-24 * time.Hour),
		SeatsTotal:  3, Status: domain.RideStatusCompleted,
	})
	f.bookingRepo.AddBooking(&domain.Booking{
		ID: "b1", RideID: "r1", PassengerID: "user-1",
		Seats: 1, Status: domain.BookingStatusConfirmed,
	})

	profile, err := f.service.BanUser(context.Background(), "admin-1", "user-2", "repeated no-shows")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !profile.Banned || profile.BanReason != "repeated no-shows" {
		t.Error("ban flag and reason should be set")
	}

	if f.rideRepo.GetRide("r1").Status != domain.RideStatusCancelled {
		t.Error("active posting should be cancelled")
	}
	if f.rideRepo.GetRide("r2").Status != domain.RideStatusCompleted {
		t.Error("completed posting should be left alone")
	}
	if f.bookingRepo.GetBooking("b1").Status != domain.BookingStatusCancelled {
		t.Error("active booking should be cancelled")
	}

	events := f.emailRepo.EventsByKind(domain.EmailKindRideCancelled)
	if len(events) != 1 || events[0].RecipientID != "user-1" {
		t.Error("affected passenger should be notified")
	}
}

func TestBanUser_ReleasesSeatsHeldOnOtherRides(t *testing.T) {
	t.Parallel()

	f := newModerationFixture()
	f.rideRepo.AddRide(&domain.Ride{
		ID: "r1", PosterID: "user-1", Role: domain.RideRoleDriver,
		OriginName: "South Lake Tahoe", DestName: "Reno",
		DepartureAt: time.Now().Add(24 * time.Hour),
		SeatsTotal:  3, Status: domain.RideStatusActive,
	})
	f.bookingRepo.AddBooking(&domain.Booking{
		ID: "b1", RideID: "r1", PassengerID: "user-2",
		Seats: 2, Status: domain.BookingStatusConfirmed,
	})

	if _, err := f.service.BanUser(context.Background(), "admin-1", "user-2", "spam"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if f.rideRepo.GetRide("r1").Status != domain.RideStatusActive {
		t.Error("the other user's ride must stay active")
	}
	booking := f.bookingRepo.GetBooking("b1")
	if booking.Status != domain.BookingStatusCancelled || booking.CancelReason != "passenger banned" {
		t.Errorf("held seat should be released, got %s / %q", booking.Status, booking.CancelReason)
	}

	events := f.emailRepo.EventsByKind(domain.EmailKindBookingCancelled)
	if len(events) != 1 || events[0].RecipientID != "user-1" {
		t.Error("the ride's poster should be notified")
	}
}

func TestBanUser_AdminOnly(t *testing.T) {
	t.Parallel()

	f := newModerationFixture()

	if _, err := f.service.BanUser(context.Background(), "user-1", "user-2", "nope"); !errors.Is(err, service.ErrNotAdmin) {
		t.Errorf("expected ErrNotAdmin, got %v", err)
	}
}

func TestUnbanUser_ClearsBan(t *testing.T) {
	t.Parallel()

	f := newModerationFixture()
	banned := f.profileRepo.GetProfile("user-2")
	banned.Banned = true
	banned.BanReason = "spam"

	profile, err := f.service.UnbanUser(context.Background(), "admin-1", "user-2")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if profile.Banned || profile.BanReason != "" {
		t.Error("ban should be lifted")
	}
}
