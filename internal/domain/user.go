package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the identity-directory record for students and staff alike.
// Staff records in the directory reference users by the same id.
type User struct {
	ID           string
	FullName     string
	Email        string
	Phone        string
	RegID        string
	Program      string
	Department   string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
