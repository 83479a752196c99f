package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// ModerationService handles reports and admin bans.
type ModerationService struct {
	reportRepo  repository.ReportRepository
	profileRepo repository.ProfileRepository
	rideRepo    repository.RideRepository
	bookingRepo repository.BookingRepository
	emails      *EmailService
}

// NewModerationService creates a new ModerationService.
func NewModerationService(
	reportRepo repository.ReportRepository,
	profileRepo repository.ProfileRepository,
	rideRepo repository.RideRepository,
	bookingRepo repository.BookingRepository,
	emails *EmailService,
) *ModerationService {
	return &ModerationService{
		reportRepo:  reportRepo,
		profileRepo: profileRepo,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		emails:      emails,
	}
}

// CreateReportRequest contains the parameters for filing a report.
type CreateReportRequest struct {
	ReporterID string
	ReportedID string
	RideID     string // Optional
	Reason     string
	Details    string
}

// CreateReport files a report against a user.
func (s *ModerationService) CreateReport(ctx context.Context, req CreateReportRequest) (*domain.Report, error) {
	if req.ReporterID == "" || req.ReportedID == "" {
		return nil, ErrInvalidPosterID
	}
	if req.ReporterID == req.ReportedID {
		return nil, ErrSelfReport
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrInvalidReason
	}

	// The reported user must exist.
	if _, err := s.profileRepo.GetByID(ctx, req.ReportedID); err != nil {
		return nil, err
	}

	report := &domain.Report{
		ID:         uuid.New().String(),
		ReporterID: req.ReporterID,
		ReportedID: req.ReportedID,
		RideID:     req.RideID,
		Reason:     strings.TrimSpace(req.Reason),
		Details:    req.Details,
		Status:     domain.ReportStatusOpen,
		CreatedAt:  time.Now(),
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// OpenReports returns all open reports. Admin-only.
func (s *ModerationService) OpenReports(ctx context.Context, adminID string) ([]*domain.Report, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.reportRepo.ListOpen(ctx)
}

// ResolveReportRequest contains the parameters for closing a report.
type ResolveReportRequest struct {
	ReportID   string
	AdminID    string
	Dismiss    bool
	Resolution string
}

// ResolveReport closes an open report as RESOLVED or DISMISSED.
func (s *ModerationService) ResolveReport(ctx context.Context, req ResolveReportRequest) (*domain.Report, error) {
	if err := s.requireAdmin(ctx, req.AdminID); err != nil {
		return nil, err
	}

	report, err := s.reportRepo.GetByID(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.ReportStatusOpen {
		return nil, ErrReportClosed
	}

	report.Status = domain.ReportStatusResolved
	if req.Dismiss {
		report.Status = domain.ReportStatusDismissed
	}
	report.Resolution = req.Resolution
	report.ResolvedBy = req.AdminID
	report.ResolvedAt = time.Now()

	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// BanUser bans a user, cancels their active postings (notifying the
// passengers booked on them), and releases any seats the banned user
// holds on other rides (notifying those posters).
func (s *ModerationService) BanUser(ctx context.Context, adminID, userID, reason string) (*domain.Profile, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Banned = true
	profile.BanReason = reason
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
		ride.CancelReason = "poster banned"
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

	// Seats the banned user holds on other users' rides.
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
		booking.CancelReason = "passenger banned"
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

// UnbanUser lifts a ban.
func (s *ModerationService) UnbanUser(ctx context.Context, adminID, userID string) (*domain.Profile, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Banned = false
	profile.BanReason = ""
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ModerationService) requireAdmin(ctx context.Context, adminID string) error {
	if adminID == "" {
		return ErrInvalidPosterID
	}

	admin, err := s.profileRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}
