package entities

import (
	"time"
)

// UserRole distinguishes the two kinds of actors in the system
type UserRole string

const (
	UserRolePatient   UserRole = "patient"
	UserRoleCaregiver UserRole = "caregiver"
)

// Valid reports whether the role is one of the known roles
func (r UserRole) Valid() bool {
	return r == UserRolePatient || r == UserRoleCaregiver
}

// User represents a registered patient or caregiver account. The username is
// the identity reference used by availabilities and appointments.
type User struct {
	Username     string    `json:"username" db:"username"`
	Role         UserRole  `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
