package domain

import "time"

// Profile represents a registered user of the community.
type Profile struct {
	ID            string
	DisplayName   string
	Email         string
	Phone         string
	PhoneVerified bool
	Bio           string
	AvatarURL     string
	IsAdmin       bool
	Banned        bool
	BanReason     string
	Deactivated   bool
	DeactivatedAt time.Time
	CreatedAt     time.Time
}
