package service

import "errors"

var (
	// ErrInvalidPosterID is returned when the posting user ID is empty.
	ErrInvalidPosterID = errors.New("invalid poster id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidRole is returned when the ride role is not DRIVER or PASSENGER.
	ErrInvalidRole = errors.New("invalid ride role")

	// ErrInvalidOrigin is returned when origin coordinates are invalid.
	ErrInvalidOrigin = errors.New("invalid origin location")

	// ErrInvalidDestination is returned when destination coordinates are invalid.
	ErrInvalidDestination = errors.New("invalid destination location")

	// ErrDepartureInPast is returned when a posting departs in the past.
	ErrDepartureInPast = errors.New("departure is in the past")

	// ErrInvalidSeats is returned when the seat count is out of range.
	ErrInvalidSeats = errors.New("invalid seat count")

	// ErrReturnBeforeOutbound is returned when a return leg departs before
	// the outbound leg.
	ErrReturnBeforeOutbound = errors.New("return leg departs before outbound leg")

	// ErrSeriesWithReturn is returned when a posting mixes recurring dates
	// with a return leg.
	ErrSeriesWithReturn = errors.New("recurring series cannot include a return leg")

	// ErrInvalidScope is returned when the edit/delete scope is unknown.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrDateChangeNeedsSingleScope is returned when a date change is
	// combined with a multi-row scope.
	ErrDateChangeNeedsSingleScope = errors.New("date change requires single scope")

	// ErrInvalidTimeOfDay is returned when a time-of-day edit is not "HH:MM".
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	// ErrSeatsBelowBooked is returned when an edit would reduce seats below
	// the confirmed booking count on any affected ride.
	ErrSeatsBelowBooked = errors.New("seat count below confirmed bookings")

	// ErrRideNotActive is returned when mutating a cancelled or completed ride.
	ErrRideNotActive = errors.New("ride is not active")

	// ErrRideDeparted is returned when booking a ride whose departure passed.
	ErrRideDeparted = errors.New("ride has already departed")

	// ErrRideNotDeparted is returned when completing a ride that has not
	// departed yet.
	ErrRideNotDeparted = errors.New("ride has not departed yet")

	// ErrNotRideOwner is returned when a non-poster mutates a ride.
	ErrNotRideOwner = errors.New("not the ride owner")

	// ErrOwnRide is returned when a poster books their own ride.
	ErrOwnRide = errors.New("cannot book own ride")

	// ErrNotDriverRide is returned when booking a passenger request posting.
	ErrNotDriverRide = errors.New("ride is not a driver offer")

	// ErrBookingExists is returned when the passenger already holds a
	// non-cancelled booking on the ride.
	ErrBookingExists = errors.New("booking already exists for this ride")

	// ErrNotEnoughSeats is returned when a ride lacks free seats.
	ErrNotEnoughSeats = errors.New("not enough free seats")

	// ErrRideBusy is returned when the ride's seat lock is held elsewhere.
	ErrRideBusy = errors.New("ride is being booked, try again")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidBookingState is returned on an illegal booking transition.
	ErrInvalidBookingState = errors.New("booking not in expected state")

	// ErrNotBookingParty is returned when the actor is neither the
	// passenger nor the ride poster.
	ErrNotBookingParty = errors.New("not a party to this booking")

	// ErrBookingAlreadyCancelled is returned when cancelling twice.
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")

	// ErrBlocked is returned when a block exists between the two users.
	ErrBlocked = errors.New("users are blocked")

	// ErrBanned is returned when a banned user attempts a mutation.
	ErrBanned = errors.New("user is banned")

	// ErrEmptyMessage is returned when a message body is empty after
	// sanitization.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNotParticipant is returned when a user reads a conversation they
	// are not part of.
	ErrNotParticipant = errors.New("not a conversation participant")

	// ErrSelfConversation is returned when messaging oneself.
	ErrSelfConversation = errors.New("cannot start a conversation with yourself")

	// ErrSelfBlock is returned when a user blocks themselves.
	ErrSelfBlock = errors.New("cannot block yourself")

	// ErrSelfReport is returned when a user reports themselves.
	ErrSelfReport = errors.New("cannot report yourself")

	// ErrNotAdmin is returned when a non-admin calls a moderation operation.
	ErrNotAdmin = errors.New("admin privileges required")

	// ErrInvalidReason is returned when a report reason is empty.
	ErrInvalidReason = errors.New("invalid report reason")

	// ErrReportClosed is returned when resolving an already-closed report.
	ErrReportClosed = errors.New("report is already closed")

	// ErrInvalidEmail is returned when an email address is empty or malformed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidDisplayName is returned when a display name is empty.
	ErrInvalidDisplayName = errors.New("invalid display name")

	// ErrEmailTaken is returned when registering with a used email address.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNotVehicleOwner is returned when using or deleting someone
	// else's vehicle.
	ErrNotVehicleOwner = errors.New("not the vehicle owner")

	// ErrInvalidQuery is returned when a geocode query is empty.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrGeocodeUnavailable is returned when the geocoding backend fails.
	ErrGeocodeUnavailable = errors.New("geocoding unavailable")

	// ErrNoPlaceFound is returned when a geocode query matches nothing.
	ErrNoPlaceFound = errors.New("no place found")
)
