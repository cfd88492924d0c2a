package domain

import "time"

// GrievanceChangeType captures what changed in a history entry.
type GrievanceChangeType string

const (
	ChangeTypeStatus    GrievanceChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee  GrievanceChangeType = "ASSIGNEE_CHANGE"
	ChangeTypeExtension GrievanceChangeType = "EXTENSION_CHANGE"
)

// GrievanceHistory is an immutable audit trail entry.
type GrievanceHistory struct {
	ID            string
	GrievanceID   string
	ChangedByType MessageAuthorType
	ChangedByID   *string
	ChangeType    GrievanceChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
