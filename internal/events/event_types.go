package events

import (
	"time"

	"github.com/campus-ops/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventGrievanceSubmitted     EventType = "grievance_submitted"
	EventGrievanceAssigned      EventType = "grievance_assigned"
	EventGrievanceStatusChanged EventType = "grievance_status_changed"
	EventVerificationRequested  EventType = "verification_requested"
	EventResolutionVerified     EventType = "resolution_verified"
	EventExtensionResolved      EventType = "extension_resolved"
	EventStaffDemoted           EventType = "staff_demoted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	GrievanceID string      `json:"grievance_id,omitempty"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// GrievanceSubmittedPayload payload.
type GrievanceSubmittedPayload struct {
	Category       string `json:"category"`
	StudentProgram string `json:"student_program"`
	StudentEmail   string `json:"student_email"`
}

// GrievanceAssignedPayload payload.
type GrievanceAssignedPayload struct {
	AssignedTo   string     `json:"assigned_to"`
	AssignedBy   string     `json:"assigned_by"`
	DeadlineDate *time.Time `json:"deadline_date,omitempty"`
}

// GrievanceStatusChangedPayload payload.
type GrievanceStatusChangedPayload struct {
	OldStatus domain.GrievanceStatus `json:"old_status"`
	NewStatus domain.GrievanceStatus `json:"new_status"`
	Remarks   string                 `json:"remarks,omitempty"`
}

// VerificationRequestedPayload is emitted when a staff member proposes a
// resolution and the student must accept or reject it.
type VerificationRequestedPayload struct {
	Category          string  `json:"category"`
	StudentEmail      string  `json:"student_email"`
	ResolutionRemarks string  `json:"resolution_remarks"`
	WindowHours       int     `json:"window_hours"`
	AssignedTo        *string `json:"assigned_to,omitempty"`
}

// ResolutionVerifiedPayload payload.
type ResolutionVerifiedPayload struct {
	Accepted   bool    `json:"accepted"`
	Feedback   string  `json:"feedback,omitempty"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	AssignedBy *string `json:"assigned_by,omitempty"`
}

// ExtensionResolvedPayload payload.
type ExtensionResolvedPayload struct {
	Approved      bool       `json:"approved"`
	RequestedDate *time.Time `json:"requested_date,omitempty"`
	AssignedTo    *string    `json:"assigned_to,omitempty"`
}

// StaffDemotedPayload payload.
type StaffDemotedPayload struct {
	StaffID        string `json:"staff_id"`
	GrievanceCount int64  `json:"grievance_count"`
}
