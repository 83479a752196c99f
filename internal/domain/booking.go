package domain

import "time"

// BookingStatus represents the current status of a seat booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusInvited   BookingStatus = "INVITED"
	BookingStatusDeclined  BookingStatus = "DECLINED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking represents a passenger's reservation against a driver ride posting.
type Booking struct {
	ID           string
	RideID       string
	PassengerID  string
	Seats        int
	Status       BookingStatus
	Message      string
	CreatedAt    time.Time
	RespondedAt  time.Time
	CancelledAt  time.Time
	CancelReason string
}

// Active reports whether the booking still holds or requests seats.
func (b *Booking) Active() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInvited:
		return true
	}
	return false
}
