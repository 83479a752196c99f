package domain

import "time"

// UserBlock hides two users from each other: listings are filtered
// both ways and neither can message or book with the other.
type UserBlock struct {
	BlockerID string
	BlockedID string
	CreatedAt time.Time
}
