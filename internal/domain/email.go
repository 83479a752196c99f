package domain

import "time"

// EmailStatus represents the delivery state of a queued email.
type EmailStatus string

const (
	EmailStatusQueued  EmailStatus = "QUEUED"
	EmailStatusSending EmailStatus = "SENDING"
	EmailStatusSent    EmailStatus = "SENT"
	EmailStatusFailed  EmailStatus = "FAILED"
)

// EmailKind identifies the notification template an event maps to.
type EmailKind string

const (
	EmailKindBookingRequested EmailKind = "BOOKING_REQUESTED"
	EmailKindBookingConfirmed EmailKind = "BOOKING_CONFIRMED"
	EmailKindBookingDeclined  EmailKind = "BOOKING_DECLINED"
	EmailKindBookingCancelled EmailKind = "BOOKING_CANCELLED"
	EmailKindBookingInvited   EmailKind = "BOOKING_INVITED"
	EmailKindRideUpdated      EmailKind = "RIDE_UPDATED"
	EmailKindRideCancelled    EmailKind = "RIDE_CANCELLED"
	EmailKindMessageReceived  EmailKind = "MESSAGE_RECEIVED"
)

// EmailEvent is a row in the outgoing email queue. Delivery is retried
// with linear backoff until MaxAttempts, then marked FAILED for good.
type EmailEvent struct {
	ID            string
	RecipientID   string
	Kind          EmailKind
	Subject       string
	Body          string
	Status        EmailStatus
	Attempts      int
	LastError     string
	NextAttemptAt time.Time
	CreatedAt     time.Time
	SentAt        time.Time
}
