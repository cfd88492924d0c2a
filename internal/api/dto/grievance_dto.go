package dto

import (
	"time"

	"github.com/campus-ops/grievance-service/internal/domain"
)

// SubmitGrievanceRequest payload.
type SubmitGrievanceRequest struct {
	StudentProgram string  `json:"student_program"`
	Category       string  `json:"category"`
	Message        string  `json:"message"`
	Attachment     *string `json:"attachment,omitempty"`
}

// UpdateStatusRequest payload for staff status changes.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

// VerifyResolutionRequest records the submitter's decision.
type VerifyResolutionRequest struct {
	Accept   bool   `json:"accept"`
	Feedback string `json:"feedback,omitempty"`
}

// AssignRequest payload.
type AssignRequest struct {
	StaffID  string `json:"staff_id"`
	Deadline string `json:"deadline"`
}

// ExtensionRequestPayload payload for requesting a deadline extension.
type ExtensionRequestPayload struct {
	RequestedDate string `json:"requested_date"`
	Reason        string `json:"reason"`
}

// ResolveExtensionRequest payload for approving or rejecting an extension.
type ResolveExtensionRequest struct {
	GrievanceID string `json:"grievance_id,omitempty"`
	Approve     bool   `json:"approve"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body string `json:"body"`
}

// ExtensionResponse mirrors a deadline-extension request.
type ExtensionResponse struct {
	RequestedDate time.Time              `json:"requested_date"`
	Reason        string                 `json:"reason"`
	Status        domain.ExtensionStatus `json:"status"`
}

// GrievanceResponse provides full grievance info.
type GrievanceResponse struct {
	ID                   string                 `json:"id"`
	UserID               string                 `json:"user_id"`
	Name                 string                 `json:"name"`
	Email                string                 `json:"email"`
	Phone                string                 `json:"phone,omitempty"`
	RegID                string                 `json:"reg_id"`
	StudentProgram       string                 `json:"student_program"`
	Category             string                 `json:"category"`
	Message              string                 `json:"message"`
	Attachment           *string                `json:"attachment,omitempty"`
	AssignedTo           *string                `json:"assigned_to,omitempty"`
	AssignedRole         *string                `json:"assigned_role,omitempty"`
	AssignedBy           *string                `json:"assigned_by,omitempty"`
	DeadlineDate         *time.Time             `json:"deadline_date,omitempty"`
	Extension            *ExtensionResponse     `json:"extension,omitempty"`
	Status               domain.GrievanceStatus `json:"status"`
	ResolvedBy           *string                `json:"resolved_by,omitempty"`
	ResolutionRemarks    *string                `json:"resolution_remarks,omitempty"`
	ResolutionProposedAt *time.Time             `json:"resolution_proposed_at,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// GrievanceSummaryResponse is the reduced projection for assigned staff.
type GrievanceSummaryResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	RegID        string                 `json:"reg_id"`
	Category     string                 `json:"category"`
	Message      string                 `json:"message"`
	Status       domain.GrievanceStatus `json:"status"`
	DeadlineDate *time.Time             `json:"deadline_date,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// MessageResponse represents one thread message.
type MessageResponse struct {
	ID         string                   `json:"id"`
	AuthorType domain.MessageAuthorType `json:"author_type"`
	AuthorID   *string                  `json:"author_id,omitempty"`
	Body       string                   `json:"body"`
	CreatedAt  time.Time                `json:"created_at"`
}

// HistoryResponse represents one audit entry.
type HistoryResponse struct {
	ID            string                     `json:"id"`
	ChangeType    domain.GrievanceChangeType `json:"change_type"`
	ChangedByType domain.MessageAuthorType   `json:"changed_by_type"`
	ChangedByID   *string                    `json:"changed_by_id,omitempty"`
	OldValue      map[string]any             `json:"old_value,omitempty"`
	NewValue      map[string]any             `json:"new_value,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// AssignResponse wraps the updated grievance plus any deadline warning.
type AssignResponse struct {
	Grievance GrievanceResponse `json:"grievance"`
	Warning   string            `json:"warning,omitempty"`
}
