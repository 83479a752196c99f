package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
)

// Seat confirmation holds the ride lock briefly; bookings queue behind it.
const rideLockTTL = 10 * time.Second

// BookingService handles seat reservations against driver ride postings.
type BookingService struct {
	rideRepo    repository.RideRepository
	bookingRepo repository.BookingRepository
	blockRepo   repository.BlockRepository
	profileRepo repository.ProfileRepository
	lockStore   redis.LockStoreInterface
	emails      *EmailService
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	rideRepo repository.RideRepository,
	bookingRepo repository.BookingRepository,
	blockRepo repository.BlockRepository,
	profileRepo repository.ProfileRepository,
	lockStore redis.LockStoreInterface,
	emails *EmailService,
) *BookingService {
	return &BookingService{
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		blockRepo:   blockRepo,
		profileRepo: profileRepo,
		lockStore:   lockStore,
		emails:      emails,
	}
}

// RequestBookingRequest contains the parameters for requesting seats.
type RequestBookingRequest struct {
	RideID      string
	PassengerID string
	Seats       int
	Message     string
}

// RequestBooking creates a PENDING booking for the passenger.
func (s *BookingService) RequestBooking(ctx context.Context, req RequestBookingRequest) (*domain.Booking, error) {
	ride, err := s.eligibleRide(ctx, req.RideID, req.PassengerID)
	if err != nil {
		return nil, err
	}
	if req.Seats < 1 || req.Seats > ride.SeatsTotal {
		return nil, ErrInvalidSeats
	}

	free, err := s.freeSeats(ctx, ride)
	if err != nil {
		return nil, err
	}
	if free < req.Seats {
		return nil, ErrNotEnoughSeats
	}

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		RideID:      ride.ID,
		PassengerID: req.PassengerID,
		Seats:       req.Seats,
		Status:      domain.BookingStatusPending,
		Message:     SanitizeText(req.Message),
		CreatedAt:   time.Now(),
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.emails.Enqueue(ctx, ride.PosterID, domain.EmailKindBookingRequested,
		"New seat request for your ride",
		fmt.Sprintf("A passenger requested %d seat(s) on your ride %s to %s on %s.",
			req.Seats, ride.OriginName, ride.DestName, ride.DepartureAt.Format("Mon Jan 2 15:04")))

	return booking, nil
}

// InvitePassengerRequest contains the parameters for inviting a passenger.
type InvitePassengerRequest struct {
	RideID      string
	PosterID    string
	PassengerID string
	Seats       int
	Message     string
}

// InvitePassenger creates an INVITED booking on behalf of the poster;
// the passenger accepts or declines it.
func (s *BookingService) InvitePassenger(ctx context.Context, req InvitePassengerRequest) (*domain.Booking, error) {
	ride, err := s.eligibleRide(ctx, req.RideID, req.PassengerID)
	if err != nil {
		return nil, err
	}
	if ride.PosterID != req.PosterID {
		return nil, ErrNotRideOwner
	}
	if req.Seats < 1 {
		req.Seats = 1
	}
	if req.Seats > ride.SeatsTotal {
		return nil, ErrInvalidSeats
	}

	// The invitee must exist and be in good standing.
	invitee, err := s.profileRepo.GetByID(ctx, req.PassengerID)
	if err != nil {
		return nil, err
	}
	if invitee.Banned {
		return nil, ErrBanned
	}

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		RideID:      ride.ID,
		PassengerID: req.PassengerID,
		Seats:       req.Seats,
		Status:      domain.BookingStatusInvited,
		Message:     SanitizeText(req.Message),
		CreatedAt:   time.Now(),
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.emails.Enqueue(ctx, req.PassengerID, domain.EmailKindBookingInvited,
		"You were invited to a ride",
		fmt.Sprintf("The driver invited you to their ride %s to %s on %s.",
			ride.OriginName, ride.DestName, ride.DepartureAt.Format("Mon Jan 2 15:04")))

	return booking, nil
}

// Confirm transitions a PENDING booking to CONFIRMED. Poster-only.
func (s *BookingService) Confirm(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	booking, ride, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if ride.PosterID != actorID {
		return nil, ErrNotBookingParty
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, ErrInvalidBookingState
	}

	if err := s.confirmWithLock(ctx, ride, booking); err != nil {
		return nil, err
	}

	s.emails.Enqueue(ctx, booking.PassengerID, domain.EmailKindBookingConfirmed,
		"Your seat is confirmed",
		fmt.Sprintf("Your booking on the ride %s to %s on %s was confirmed.",
			ride.OriginName, ride.DestName, ride.DepartureAt.Format("Mon Jan 2 15:04")))

	return booking, nil
}

// AcceptInvite transitions an INVITED booking to CONFIRMED. Passenger-only.
func (s *BookingService) AcceptInvite(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	booking, ride, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PassengerID != actorID {
		return nil, ErrNotBookingParty
	}
	if booking.Status != domain.BookingStatusInvited {
		return nil, ErrInvalidBookingState
	}

	if err := s.confirmWithLock(ctx, ride, booking); err != nil {
		return nil, err
	}

	s.emails.Enqueue(ctx, ride.PosterID, domain.EmailKindBookingConfirmed,
		"Your invite was accepted",
		fmt.Sprintf("Your invite for the ride %s to %s on %s was accepted.",
			ride.OriginName, ride.DestName, ride.DepartureAt.Format("Mon Jan 2 15:04")))

	return booking, nil
}

// Decline rejects a PENDING booking (poster) or an INVITED booking
// (passenger).
func (s *BookingService) Decline(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	booking, ride, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var recipient string
	switch booking.Status {
	case domain.BookingStatusPending:
		if ride.PosterID != actorID {
			return nil, ErrNotBookingParty
		}
		recipient = booking.PassengerID
	case domain.BookingStatusInvited:
		if booking.PassengerID != actorID {
			return nil, ErrNotBookingParty
		}
		recipient = ride.PosterID
	default:
		return nil, ErrInvalidBookingState
	}

	booking.Status = domain.BookingStatusDeclined
	booking.RespondedAt = time.Now()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.emails.Enqueue(ctx, recipient, domain.EmailKindBookingDeclined,
		"Booking declined",
		fmt.Sprintf("The booking on the ride %s to %s on %s was declined.",
			ride.OriginName, ride.DestName, ride.DepartureAt.Format("Mon Jan 2 15:04")))

	return booking, nil
}

// Cancel cancels an active booking. The passenger can cancel their own
// booking; the poster can cancel any booking on their ride.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID, reason string) (*domain.Booking, error) {
	booking, ride, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PassengerID != actorID && ride.PosterID != actorID {
		return nil, ErrNotBookingParty
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, ErrBookingAlreadyCancelled
	}
	if !booking.Active() {
		return nil, ErrInvalidBookingState
	}

	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = time.Now()
	booking.CancelReason = reason
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	recipient := booking.PassengerID
	if actorID == booking.PassengerID {
		recipient = ride.PosterID
	}
	s.emails.Enqueue(ctx, recipient, domain.EmailKindBookingCancelled,
		"Booking cancelled",
		fmt.Sprintf("A booking on the ride %s to %s on %s was cancelled.",
			ride.OriginName, ride.DestName, ride.DepartureAt.Format("Mon Jan 2 15:04")))

	return booking, nil
}

// MyBookings returns a passenger's bookings, newest first.
func (s *BookingService) MyBookings(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	if passengerID == "" {
		return nil, ErrInvalidPosterID
	}
	return s.bookingRepo.ListByPassenger(ctx, passengerID)
}

// ReceivedBookings returns all bookings against a user's postings.
func (s *BookingService) ReceivedBookings(ctx context.Context, posterID string) ([]*domain.Booking, error) {
	if posterID == "" {
		return nil, ErrInvalidPosterID
	}

	rides, err := s.rideRepo.ListByPoster(ctx, posterID)
	if err != nil {
		return nil, err
	}

	rideIDs := make([]string, len(rides))
	for i, ride := range rides {
		rideIDs[i] = ride.ID
	}
	return s.bookingRepo.ListByRides(ctx, rideIDs)
}

// eligibleRide checks that the ride can accept a booking for the passenger.
func (s *BookingService) eligibleRide(ctx context.Context, rideID, passengerID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if passengerID == "" {
		return nil, ErrInvalidPosterID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Role != domain.RideRoleDriver {
		return nil, ErrNotDriverRide
	}
	if ride.Status != domain.RideStatusActive {
		return nil, ErrRideNotActive
	}
	if ride.DepartureAt.Before(time.Now()) {
		return nil, ErrRideDeparted
	}
	if ride.PosterID == passengerID {
		return nil, ErrOwnRide
	}

	blocked, err := s.blockRepo.IsBlockedPair(ctx, ride.PosterID, passengerID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	existing, err := s.bookingRepo.ListByRide(ctx, ride.ID)
	if err != nil {
		return nil, err
	}
	for _, booking := range existing {
		if booking.PassengerID == passengerID && booking.Active() {
			return nil, ErrBookingExists
		}
	}

	return ride, nil
}

// confirmWithLock re-checks capacity and confirms the booking while
// holding the ride's seat lock.
func (s *BookingService) confirmWithLock(ctx context.Context, ride *domain.Ride, booking *domain.Booking) error {
	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireRideLock(ctx, ride.ID, rideLockTTL)
		if err != nil {
			return err
		}
		if !locked {
			return ErrRideBusy
		}
		defer s.lockStore.ReleaseRideLock(ctx, ride.ID)
	}

	free, err := s.freeSeats(ctx, ride)
	if err != nil {
		return err
	}
	if free < booking.Seats {
		return ErrNotEnoughSeats
	}

	booking.Status = domain.BookingStatusConfirmed
	booking.RespondedAt = time.Now()
	return s.bookingRepo.Update(ctx, booking)
}

func (s *BookingService) freeSeats(ctx context.Context, ride *domain.Ride) (int, error) {
	confirmed, err := s.bookingRepo.ConfirmedSeats(ctx, ride.ID)
	if err != nil {
		return 0, err
	}
	return ride.SeatsTotal - confirmed, nil
}

// load fetches a booking with its ride.
func (s *BookingService) load(ctx context.Context, bookingID string) (*domain.Booking, *domain.Ride, error) {
	if bookingID == "" {
		return nil, nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, nil, err
	}
	return booking, ride, nil
}
