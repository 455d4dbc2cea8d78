package entity

import "time"

const (
	RoleOwner = "owner"
	RoleCoach = "coach"
)

type Organization struct {
	ID          uint64
	Name        string
	Slug        string
	Plan        string
	TrialEndsAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID             uint64
	OrganizationID uint64
	Email          string
	FullName       string
	Role           string
	PasswordHash   string
	EmailVerified  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
