package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
	"rideshare/internal/repository/postgres"
)

const maxSeats = 8

// RideService handles ride posting operations: creation of singles,
// round trips, and recurring series, search, and scoped edit/cancel
// with booking side effects.
type RideService struct {
	db          *sql.DB
	rideRepo    repository.RideRepository
	bookingRepo repository.BookingRepository
	blockRepo   repository.BlockRepository
	vehicleRepo repository.VehicleRepository
	emails      *EmailService
}

// NewRideService creates a new RideService. db may be nil in tests;
// mutations then run against the injected repositories without a
// transaction.
func NewRideService(
	db *sql.DB,
	rideRepo repository.RideRepository,
	bookingRepo repository.BookingRepository,
	blockRepo repository.BlockRepository,
	vehicleRepo repository.VehicleRepository,
	emails *EmailService,
) *RideService {
	return &RideService{
		db:          db,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		blockRepo:   blockRepo,
		vehicleRepo: vehicleRepo,
		emails:      emails,
	}
}

// PlaceInput is a named coordinate pair.
type PlaceInput struct {
	Name string
	Lat  float64
	Lng  float64
}

// CreateRideRequest contains the parameters for creating a posting.
// ReturnAt turns the posting into a round trip; ExtraDates turn it
// into a recurring series (one row per date). The two are exclusive.
type CreateRideRequest struct {
	PosterID     string
	Role         domain.RideRole
	Origin       PlaceInput
	Dest         PlaceInput
	DepartureAt  time.Time
	ReturnAt     time.Time
	ExtraDates   []time.Time
	SeatsTotal   int
	PricePerSeat float64
	Notes        string
	VehicleID    string
}

// CreateRide validates and persists a posting, expanding round trips
// and series into their component rows.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) ([]*domain.Ride, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	if req.VehicleID != "" {
		vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
		if err != nil {
			return nil, err
		}
		if vehicle.OwnerID != req.PosterID {
			return nil, ErrNotVehicleOwner
		}
	}

	notes := SanitizeText(req.Notes)
	now := time.Now()

	base := domain.Ride{
		PosterID:     req.PosterID,
		Role:         req.Role,
		OriginName:   req.Origin.Name,
		OriginLat:    req.Origin.Lat,
		OriginLng:    req.Origin.Lng,
		DestName:     req.Dest.Name,
		DestLat:      req.Dest.Lat,
		DestLng:      req.Dest.Lng,
		SeatsTotal:   req.SeatsTotal,
		PricePerSeat: req.PricePerSeat,
		Notes:        notes,
		Status:       domain.RideStatusActive,
		VehicleID:    req.VehicleID,
		CreatedAt:    now,
	}

	var rides []*domain.Ride

	switch {
	case len(req.ExtraDates) > 0:
		// Recurring series: one row per date, shared group ID.
		groupID := uuid.New().String()
		for _, departure := range append([]time.Time{req.DepartureAt}, req.ExtraDates...) {
			ride := base
			ride.ID = uuid.New().String()
			ride.DepartureAt = departure
			ride.RoundTripGroupID = groupID
			ride.IsRecurring = true
			rides = append(rides, &ride)
		}

	case !req.ReturnAt.IsZero():
		// Round trip: outbound plus a mirrored return leg.
		groupID := uuid.New().String()

		outbound := base
		outbound.ID = uuid.New().String()
		outbound.DepartureAt = req.DepartureAt
		outbound.RoundTripGroupID = groupID

		ret := base
		ret.ID = uuid.New().String()
		ret.DepartureAt = req.ReturnAt
		ret.RoundTripGroupID = groupID
		ret.IsReturnLeg = true
		ret.OriginName, ret.DestName = base.DestName, base.OriginName
		ret.OriginLat, ret.DestLat = base.DestLat, base.OriginLat
		ret.OriginLng, ret.DestLng = base.DestLng, base.OriginLng

		rides = append(rides, &outbound, &ret)

	default:
		ride := base
		ride.ID = uuid.New().String()
		ride.DepartureAt = req.DepartureAt
		rides = append(rides, &ride)
	}

	if err := s.rideRepo.CreateBatch(ctx, rides); err != nil {
		return nil, err
	}
	return rides, nil
}

func (s *RideService) validateCreateRequest(req CreateRideRequest) error {
	if req.PosterID == "" {
		return ErrInvalidPosterID
	}
	if req.Role != domain.RideRoleDriver && req.Role != domain.RideRolePassenger {
		return ErrInvalidRole
	}
	if !isValidLatitude(req.Origin.Lat) || !isValidLongitude(req.Origin.Lng) || req.Origin.Name == "" {
		return ErrInvalidOrigin
	}
	if !isValidLatitude(req.Dest.Lat) || !isValidLongitude(req.Dest.Lng) || req.Dest.Name == "" {
		return ErrInvalidDestination
	}
	if req.DepartureAt.Before(time.Now()) {
		return ErrDepartureInPast
	}
	if req.SeatsTotal < 1 || req.SeatsTotal > maxSeats {
		return ErrInvalidSeats
	}
	if !req.ReturnAt.IsZero() {
		if len(req.ExtraDates) > 0 {
			return ErrSeriesWithReturn
		}
		if req.ReturnAt.Before(req.DepartureAt) {
			return ErrReturnBeforeOutbound
		}
	}
	for _, date := range req.ExtraDates {
		if date.Before(time.Now()) {
			return ErrDepartureInPast
		}
	}
	return nil
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// SearchRequest contains ride search filters.
type SearchRequest struct {
	ViewerID     string
	Role         domain.RideRole
	NearLat      float64
	NearLng      float64
	RadiusKm     float64
	FromDate     time.Time
	ToDate       time.Time
	MinFreeSeats int
	Limit        int
}

// ListedRide is a ride with its computed free seat count.
type ListedRide struct {
	Ride      *domain.Ride
	SeatsFree int
}

// Search returns active rides matching the filters, hiding postings
// from users the viewer has blocked or who blocked the viewer.
func (s *RideService) Search(ctx context.Context, req SearchRequest) ([]ListedRide, error) {
	rides, err := s.rideRepo.Search(ctx, repository.RideFilter{
		Role:     req.Role,
		NearLat:  req.NearLat,
		NearLng:  req.NearLng,
		RadiusKm: req.RadiusKm,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, err
	}

	hidden := make(map[string]bool)
	if req.ViewerID != "" {
		blockedIDs, err := s.blockRepo.BlockedIDs(ctx, req.ViewerID)
		if err != nil {
			return nil, err
		}
		for _, id := range blockedIDs {
			hidden[id] = true
		}
	}

	var visible []*domain.Ride
	for _, ride := range rides {
		if !hidden[ride.PosterID] {
			visible = append(visible, ride)
		}
	}

	listed, err := s.withSeatCounts(ctx, visible)
	if err != nil {
		return nil, err
	}

	if req.MinFreeSeats > 0 {
		var filtered []ListedRide
		for _, lr := range listed {
			if lr.Ride.Role != domain.RideRoleDriver || lr.SeatsFree >= req.MinFreeSeats {
				filtered = append(filtered, lr)
			}
		}
		listed = filtered
	}

	return listed, nil
}

// GetRide returns a single ride with its free seat count.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*ListedRide, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.bookingRepo.ConfirmedSeats(ctx, rideID)
	if err != nil {
		return nil, err
	}

	return &ListedRide{Ride: ride, SeatsFree: ride.SeatsTotal - confirmed}, nil
}

// MyRides returns a user's postings collapsed into logical groups.
func (s *RideService) MyRides(ctx context.Context, userID string) ([]RideGroup, error) {
	if userID == "" {
		return nil, ErrInvalidPosterID
	}

	rides, err := s.rideRepo.ListByPoster(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GroupRides(rides), nil
}

// EditRideRequest contains a scoped edit. Nil fields are unchanged.
// DepartureAt moves a single date and is only legal with ScopeSingle;
// TimeOfDay ("15:04") shifts the departure clock time across every
// resolved row while keeping each row's date.
type EditRideRequest struct {
	RideID       string
	EditorID     string
	Scope        EditScope
	DepartureAt  *time.Time
	TimeOfDay    *string
	SeatsTotal   *int
	PricePerSeat *float64
	Notes        *string
	VehicleID    *string
}

// EditRide applies a scoped edit to a posting and its group, then
// notifies passengers holding active bookings on the touched rows.
// Bookings reference ride IDs and rows are updated in place, so
// bookings follow the edited rides without migration writes.
func (s *RideService) EditRide(ctx context.Context, req EditRideRequest) ([]*domain.Ride, error) {
	target, resolved, err := s.resolveMutation(ctx, req.RideID, req.EditorID, req.Scope)
	if err != nil {
		return nil, err
	}

	if req.DepartureAt != nil {
		if req.Scope != ScopeSingle {
			return nil, ErrDateChangeNeedsSingleScope
		}
		if req.DepartureAt.Before(time.Now()) {
			return nil, ErrDepartureInPast
		}
	}

	var hour, minute int
	if req.TimeOfDay != nil {
		parsed, err := time.Parse("15:04", *req.TimeOfDay)
		if err != nil {
			return nil, ErrInvalidTimeOfDay
		}
		hour, minute = parsed.Hour(), parsed.Minute()
	}

	if req.SeatsTotal != nil {
		if *req.SeatsTotal < 1 || *req.SeatsTotal > maxSeats {
			return nil, ErrInvalidSeats
		}
		// Capacity is checked across every resolved row before any write.
		for _, ride := range resolved {
			confirmed, err := s.bookingRepo.ConfirmedSeats(ctx, ride.ID)
			if err != nil {
				return nil, err
			}
			if confirmed > *req.SeatsTotal {
				return nil, ErrSeatsBelowBooked
			}
		}
	}

	if req.VehicleID != nil && *req.VehicleID != "" {
		vehicle, err := s.vehicleRepo.GetByID(ctx, *req.VehicleID)
		if err != nil {
			return nil, err
		}
		if vehicle.OwnerID != target.PosterID {
			return nil, ErrNotVehicleOwner
		}
	}

	for _, ride := range resolved {
		if req.DepartureAt != nil {
			ride.DepartureAt = *req.DepartureAt
		}
		if req.TimeOfDay != nil {
			d := ride.DepartureAt
			ride.DepartureAt = time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
		}
		if req.SeatsTotal != nil {
			ride.SeatsTotal = *req.SeatsTotal
		}
		if req.PricePerSeat != nil {
			ride.PricePerSeat = *req.PricePerSeat
		}
		if req.Notes != nil {
			ride.Notes = SanitizeText(*req.Notes)
		}
		if req.VehicleID != nil {
			ride.VehicleID = *req.VehicleID
		}
	}

	err = s.withTx(ctx, func(rideRepo repository.RideRepository, _ repository.BookingRepository) error {
		return rideRepo.UpdateBatch(ctx, resolved)
	})
	if err != nil {
		return nil, err
	}

	s.notifyPassengers(ctx, resolved, domain.EmailKindRideUpdated,
		"Your ride was updated",
		func(ride *domain.Ride) string {
			return fmt.Sprintf("The ride %s to %s on %s was updated by the poster. Please review the new details.",
				ride.OriginName, ride.DestName, ride.DepartureAt.Format("Mon Jan 2 15:04"))
		}, nil)

	return resolved, nil
}

// CancelRideRequest contains a scoped cancellation.
type CancelRideRequest struct {
	RideID      string
	RequesterID string
	Scope       EditScope
	Reason      string
}

// CancelRide cancels the resolved rows and every active booking on
// them, then queues a cancellation email per affected passenger.
func (s *RideService) CancelRide(ctx context.Context, req CancelRideRequest) ([]*domain.Ride, error) {
	_, resolved, err := s.resolveMutation(ctx, req.RideID, req.RequesterID, req.Scope)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var cancelledBookings []*domain.Booking

	err = s.withTx(ctx, func(rideRepo repository.RideRepository, bookingRepo repository.BookingRepository) error {
		for _, ride := range resolved {
			ride.Status = domain.RideStatusCancelled
			ride.CancelledAt = now
			ride.CancelReason = req.Reason
			if err := rideRepo.Update(ctx, ride); err != nil {
				return err
			}

			bookings, err := bookingRepo.ListByRide(ctx, ride.ID)
			if err != nil {
				return err
			}
			for _, booking := range bookings {
				if !booking.Active() {
					continue
				}
				booking.Status = domain.BookingStatusCancelled
				booking.CancelledAt = now
				booking.CancelReason = "ride cancelled"
				if err := bookingRepo.Update(ctx, booking); err != nil {
					return err
				}
				cancelledBookings = append(cancelledBookings, booking)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rideByID := make(map[string]*domain.Ride, len(resolved))
	for _, ride := range resolved {
		rideByID[ride.ID] = ride
	}
	for _, booking := range cancelledBookings {
		ride := rideByID[booking.RideID]
		s.emails.Enqueue(ctx, booking.PassengerID, domain.EmailKindRideCancelled,
			"Your ride was cancelled",
			fmt.Sprintf("The ride %s to %s on %s was cancelled by the poster.",
				ride.OriginName, ride.DestName, ride.DepartureAt.Format("Mon Jan 2 15:04")))
	}

	return resolved, nil
}

// CompleteRide marks a departed ride COMPLETED.
func (s *RideService) CompleteRide(ctx context.Context, rideID, requesterID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.PosterID != requesterID {
		return nil, ErrNotRideOwner
	}
	if ride.Status != domain.RideStatusActive {
		return nil, ErrRideNotActive
	}
	if ride.DepartureAt.After(time.Now()) {
		return nil, ErrRideNotDeparted
	}

	ride.Status = domain.RideStatusCompleted
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}
	return ride, nil
}

// resolveMutation loads the target, checks ownership and state, and
// resolves the scope against the target's group.
func (s *RideService) resolveMutation(ctx context.Context, rideID, actorID string, scope EditScope) (*domain.Ride, []*domain.Ride, error) {
	if rideID == "" {
		return nil, nil, ErrInvalidRideID
	}

	target, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, nil, err
	}
	if target.PosterID != actorID {
		return nil, nil, ErrNotRideOwner
	}
	if target.Status != domain.RideStatusActive {
		return nil, nil, ErrRideNotActive
	}

	var group []*domain.Ride
	if target.InGroup() {
		group, err = s.rideRepo.GetByGroupID(ctx, target.RoundTripGroupID)
		if err != nil {
			return nil, nil, err
		}
	}

	resolved, err := ResolveScope(target, group, scope)
	if err != nil {
		return nil, nil, err
	}
	return target, ActiveOnly(resolved), nil
}

// withTx runs fn against transaction-scoped repositories when a
// database handle is available, and against the injected repositories
// otherwise.
func (s *RideService) withTx(ctx context.Context, fn func(repository.RideRepository, repository.BookingRepository) error) error {
	if s.db == nil {
		return fn(s.rideRepo, s.bookingRepo)
	}
	return postgres.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(postgres.NewRideRepositoryWithTx(tx), postgres.NewBookingRepositoryWithTx(tx))
	})
}

// notifyPassengers queues one email per active booking across rides.
// seen deduplicates passengers when non-nil.
func (s *RideService) notifyPassengers(ctx context.Context, rides []*domain.Ride, kind domain.EmailKind, subject string, body func(*domain.Ride) string, seen map[string]bool) {
	if seen == nil {
		seen = make(map[string]bool)
	}
	for _, ride := range rides {
		bookings, err := s.bookingRepo.ListByRide(ctx, ride.ID)
		if err != nil {
			continue
		}
		for _, booking := range bookings {
			if !booking.Active() || seen[booking.PassengerID] {
				continue
			}
			seen[booking.PassengerID] = true
			s.emails.Enqueue(ctx, booking.PassengerID, kind, subject, body(ride))
		}
	}
}

func (s *RideService) withSeatCounts(ctx context.Context, rides []*domain.Ride) ([]ListedRide, error) {
	rideIDs := make([]string, len(rides))
	for i, ride := range rides {
		rideIDs[i] = ride.ID
	}

	bookings, err := s.bookingRepo.ListByRides(ctx, rideIDs)
	if err != nil {
		return nil, err
	}

	confirmed := make(map[string]int)
	for _, booking := range bookings {
		if booking.Status == domain.BookingStatusConfirmed {
			confirmed[booking.RideID] += booking.Seats
		}
	}

	listed := make([]ListedRide, 0, len(rides))
	for _, ride := range rides {
		listed = append(listed, ListedRide{
			Ride:      ride,
			SeatsFree: ride.SeatsTotal - confirmed[ride.ID],
		})
	}
	return listed, nil
}
