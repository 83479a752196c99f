package domain

import "time"

// RideRole says whether a posting offers seats or asks for one.
type RideRole string

const (
	RideRoleDriver    RideRole = "DRIVER"
	RideRolePassenger RideRole = "PASSENGER"
)

// RideStatus represents the current status of a ride posting.
type RideStatus string

const (
	RideStatusActive    RideStatus = "ACTIVE"
	RideStatusCancelled RideStatus = "CANCELLED"
	RideStatusCompleted RideStatus = "COMPLETED"
)

// Ride represents a single-direction ride posting for one date.
// Round trips and recurring series are modelled as multiple rows
// sharing a RoundTripGroupID.
type Ride struct {
	ID               string
	PosterID         string
	Role             RideRole
	OriginName       string
	OriginLat        float64
	OriginLng        float64
	DestName         string
	DestLat          float64
	DestLng          float64
	DepartureAt      time.Time
	SeatsTotal       int
	PricePerSeat     float64
	Notes            string
	Status           RideStatus
	RoundTripGroupID string // Empty for standalone postings
	IsRecurring      bool   // True for series members, false for round-trip legs
	IsReturnLeg      bool
	VehicleID        string
	CreatedAt        time.Time
	CancelledAt      time.Time
	CancelReason     string
}

// InGroup reports whether the ride belongs to a round trip or series.
func (r *Ride) InGroup() bool {
	return r.RoundTripGroupID != ""
}
