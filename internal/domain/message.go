package domain

import "time"

// MessageAuthorType indicates who authored a thread message.
type MessageAuthorType string

const (
	AuthorTypeUser   MessageAuthorType = "USER"
	AuthorTypeStaff  MessageAuthorType = "STAFF"
	AuthorTypeSystem MessageAuthorType = "SYSTEM"
)

// GrievanceMessage captures the chat thread attached to a grievance.
type GrievanceMessage struct {
	ID          string
	GrievanceID string
	AuthorType  MessageAuthorType
	AuthorID    *string
	Body        string
	CreatedAt   time.Time
}
