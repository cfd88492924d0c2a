package domain

import "time"

// GrievanceStatus enumerates lifecycle states for grievances.
type GrievanceStatus string

const (
	StatusPending      GrievanceStatus = "Pending"
	StatusAssigned     GrievanceStatus = "Assigned"
	StatusInProgress   GrievanceStatus = "In Progress"
	StatusVerification GrievanceStatus = "Verification"
	StatusResolved     GrievanceStatus = "Resolved"
	StatusRejected     GrievanceStatus = "Rejected"
)

// IsTerminal reports whether the status accepts no further transitions.
// Verification is not terminal: the submitter's reject reopens to Pending.
func (s GrievanceStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// IsValid reports whether the value is a known status.
func (s GrievanceStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusVerification, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// StaffSettable reports whether staff may request the status directly in a
// status update. Assigned is reached only through assignment, Verification
// through a Resolved request, and Pending through the submitter rejecting a
// proposed resolution.
func (s GrievanceStatus) StaffSettable() bool {
	return s == StatusInProgress || s == StatusResolved || s == StatusRejected
}

// ExtensionStatus enumerates deadline-extension request outcomes.
type ExtensionStatus string

const (
	ExtensionPending  ExtensionStatus = "Pending"
	ExtensionApproved ExtensionStatus = "Approved"
	ExtensionRejected ExtensionStatus = "Rejected"
)

// ExtensionRequest is a staff-initiated proposal to push back a deadline.
type ExtensionRequest struct {
	RequestedDate time.Time
	Reason        string
	Status        ExtensionStatus
}

// Grievance is the aggregate for submitted complaints.
type Grievance struct {
	ID             string
	UserID         string
	Name           string
	Email          string
	Phone          string
	RegID          string
	StudentProgram string
	Category       string
	Message        string
	Attachment     *string

	AssignedTo   *string
	AssignedRole *string
	AssignedBy   *string
	DeadlineDate *time.Time

	Extension *ExtensionRequest

	Status               GrievanceStatus
	ResolvedBy           *string
	ResolutionRemarks    *string
	ResolutionProposedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GrievanceSummary is the reduced projection returned to assigned staff.
type GrievanceSummary struct {
	ID           string
	Name         string
	RegID        string
	Category     string
	Message      string
	Status       GrievanceStatus
	DeadlineDate *time.Time
	CreatedAt    time.Time
}
