package domain

import "time"

// ReportStatus represents the moderation state of a report.
type ReportStatus string

const (
	ReportStatusOpen      ReportStatus = "OPEN"
	ReportStatusResolved  ReportStatus = "RESOLVED"
	ReportStatusDismissed ReportStatus = "DISMISSED"
)

// Report represents a user-submitted complaint about another user,
// optionally tied to a specific ride posting.
type Report struct {
	ID         string
	ReporterID string
	ReportedID string
	RideID     string
	Reason     string
	Details    string
	Status     ReportStatus
	Resolution string
	ResolvedBy string
	CreatedAt  time.Time
	ResolvedAt time.Time
}
