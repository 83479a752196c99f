package domain

import "time"

// Vehicle represents a car a driver can attach to their ride postings.
type Vehicle struct {
	ID        string
	OwnerID   string
	Make      string
	Model     string
	Color     string
	Year      int
	Seats     int
	PlateHint string // Last characters only, shown to confirmed passengers
	CreatedAt time.Time
}
