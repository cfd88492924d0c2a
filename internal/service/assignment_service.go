package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/events"
	"github.com/campus-ops/grievance-service/internal/repository"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// assignedRoleStaff is recorded on the grievance when a staff member is set
// as the handler.
const assignedRoleStaff = "staff"

// AssignmentService routes grievances to staff members. Authority is derived
// from the staff directory on every call, never from request payloads.
type AssignmentService struct {
	grievances repository.GrievanceRepository
	staff      repository.StaffRepository
	users      repository.UserRepository
	history    repository.HistoryRepository
	directory  *StaffService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles the collaborators for assignment.
type AssignmentDependencies struct {
	GrievanceRepo repository.GrievanceRepository
	StaffRepo     repository.StaffRepository
	UserRepo      repository.UserRepository
	HistoryRepo   repository.HistoryRepository
	Directory     *StaffService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		grievances: deps.GrievanceRepo,
		staff:      deps.StaffRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Assign hands a grievance to a staff member, optionally with a resolution
// deadline. The caller must be the master admin or an admin of the
// grievance's department.
// A deadline before the submission date is accepted but flagged: the returned
// warning is non-empty in that case.
func (s *AssignmentService) Assign(ctx context.Context, adminID, grievanceID, staffID, deadline string) (*domain.Grievance, string, error) {
	grievance, err := s.grievances.GetByID(ctx, grievanceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewNotFound("grievance", map[string]any{"grievance_id": grievanceID})
		}
		return nil, "", apperrors.MapError(err)
	}

	if err := s.directory.AuthorizeDepartmentAdmin(ctx, adminID, grievance.Category); err != nil {
		return nil, "", err
	}
	if grievance.Status.IsTerminal() {
		return nil, "", apperrors.NewInvalidTransition("grievance already finalized", map[string]any{
			"grievance_id": grievance.ID,
			"status":       grievance.Status,
		})
	}
	// A grievance must never be handled by the student who filed it.
	if staffID == grievance.UserID {
		return nil, "", apperrors.NewInvalidAssignment("grievance cannot be assigned to its submitter", map[string]any{
			"grievance_id": grievance.ID,
			"staff_id":     staffID,
		})
	}
	if err := s.resolveAssignee(ctx, staffID); err != nil {
		return nil, "", err
	}

	// The deadline is optional; only parse and sanity-check when provided.
	var deadlineDate *time.Time
	warning := ""
	if deadline != "" {
		parsed, err := parseDate(deadline)
		if err != nil {
			return nil, "", apperrors.NewValidationError("invalid deadline date", map[string]any{"deadline": deadline})
		}
		deadlineDate = &parsed
		if deadlineBeforeSubmission(parsed, grievance.CreatedAt) {
			warning = fmt.Sprintf("deadline %s precedes submission date %s",
				parsed.Format("2006-01-02"), grievance.CreatedAt.Format("2006-01-02"))
			s.logger.Warn("assignment deadline precedes submission date",
				zap.String("grievance_id", grievance.ID),
				zap.String("staff_id", staffID),
				zap.Time("deadline", parsed),
				zap.Time("created_at", grievance.CreatedAt),
			)
		}
	}

	oldAssignee := grievance.AssignedTo
	role := assignedRoleStaff
	grievance.AssignedTo = &staffID
	grievance.AssignedRole = &role
	grievance.AssignedBy = &adminID
	grievance.DeadlineDate = deadlineDate
	grievance.Status = domain.StatusAssigned

	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, "", apperrors.MapError(err)
	}
	s.recordAssigneeChange(ctx, adminID, grievance, oldAssignee)

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventGrievanceAssigned,
			GrievanceID: grievance.ID,
			Actor:       staffActor(adminID),
			Timestamp:   time.Now(),
			Payload: events.GrievanceAssignedPayload{
				AssignedTo:   staffID,
				AssignedBy:   adminID,
				DeadlineDate: grievance.DeadlineDate,
			},
		})
	}
	return grievance, warning, nil
}

// resolveAssignee verifies the target exists, checking the staff directory
// first and falling back to the user directory for members without a record.
func (s *AssignmentService) resolveAssignee(ctx context.Context, staffID string) error {
	_, err := s.staff.GetByID(ctx, staffID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if _, err := s.users.GetByID(ctx, staffID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AssignmentService) recordAssigneeChange(ctx context.Context, adminID string, grievance *domain.Grievance, oldAssignee *string) {
	if s.history == nil {
		return
	}
	oldValue := map[string]any{}
	if oldAssignee != nil {
		oldValue["assigned_to"] = *oldAssignee
	}
	entry := &domain.GrievanceHistory{
		GrievanceID:   grievance.ID,
		ChangedByType: domain.AuthorTypeStaff,
		ChangedByID:   &adminID,
		ChangeType:    domain.ChangeTypeAssignee,
		OldValue:      oldValue,
		NewValue: map[string]any{
			"assigned_to": *grievance.AssignedTo,
			"assigned_by": adminID,
			"deadline":    grievance.DeadlineDate,
		},
	}
	_ = s.history.Create(ctx, entry)
}

// deadlineBeforeSubmission compares calendar dates, ignoring time of day, so
// a same-day deadline never trips the warning.
func deadlineBeforeSubmission(deadline, createdAt time.Time) bool {
	d := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	c := time.Date(createdAt.Year(), createdAt.Month(), createdAt.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(c)
}
