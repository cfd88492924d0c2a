package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/events"
	"github.com/campus-ops/grievance-service/internal/repository"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// systemResolver is recorded as resolved_by when no staff actor applies.
const systemResolver = "system"

// GrievanceService drives the grievance lifecycle:
// Pending -> Assigned -> In Progress -> Verification -> Resolved/Rejected,
// with Verification-reject reopening to Pending.
type GrievanceService struct {
	grievances  repository.GrievanceRepository
	messages    repository.MessageRepository
	history     repository.HistoryRepository
	users       repository.UserRepository
	directory   *StaffService
	dispatcher  events.Dispatcher
	windowHours int
}

// GrievanceDependencies bundles repositories for the lifecycle service.
type GrievanceDependencies struct {
	GrievanceRepo repository.GrievanceRepository
	MessageRepo   repository.MessageRepository
	HistoryRepo   repository.HistoryRepository
	UserRepo      repository.UserRepository
	Directory     *StaffService
	Dispatcher    events.Dispatcher
	WindowHours   int
}

// SubmitInput describes a new grievance submission.
type SubmitInput struct {
	StudentProgram string
	Category       string
	Message        string
	Attachment     *string
}

// NewGrievanceService constructs the service.
func NewGrievanceService(deps GrievanceDependencies) *GrievanceService {
	windowHours := deps.WindowHours
	if windowHours <= 0 {
		windowHours = 36
	}
	return &GrievanceService{
		grievances:  deps.GrievanceRepo,
		messages:    deps.MessageRepo,
		history:     deps.HistoryRepo,
		users:       deps.UserRepo,
		directory:   deps.Directory,
		dispatcher:  deps.Dispatcher,
		windowHours: windowHours,
	}
}

// Submit creates a grievance in Pending, unassigned. Identity fields are
// filled from the submitter's directory record.
func (s *GrievanceService) Submit(ctx context.Context, userID string, input SubmitInput) (*domain.Grievance, error) {
	if strings.TrimSpace(input.Category) == "" || strings.TrimSpace(input.StudentProgram) == "" {
		return nil, apperrors.NewValidationError("category and student program required", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	grievance := &domain.Grievance{
		UserID:         user.ID,
		Name:           user.FullName,
		Email:          user.Email,
		Phone:          user.Phone,
		RegID:          user.RegID,
		StudentProgram: strings.TrimSpace(input.StudentProgram),
		Category:       strings.TrimSpace(input.Category),
		Message:        strings.TrimSpace(input.Message),
		Attachment:     input.Attachment,
		Status:         domain.StatusPending,
	}
	if err := s.grievances.Create(ctx, grievance); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventGrievanceSubmitted,
		GrievanceID: grievance.ID,
		Actor:       userActor(user.ID),
		Payload: events.GrievanceSubmittedPayload{
			Category:       grievance.Category,
			StudentProgram: grievance.StudentProgram,
			StudentEmail:   grievance.Email,
		},
	})
	return grievance, nil
}

// UpdateStatus applies a staff-requested status change. A request for
// Resolved is intercepted and lands on Verification instead: staff propose a
// resolution, the submitter confirms it. Statuses owned by other workflows
// (Assigned, Verification, Pending) are rejected here so a status update can
// never fake an assignment or a verification round.
func (s *GrievanceService) UpdateStatus(ctx context.Context, actorStaffID, grievanceID string, requested domain.GrievanceStatus, remarks string) (*domain.Grievance, error) {
	if !requested.IsValid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": requested})
	}
	if !requested.StaffSettable() {
		return nil, apperrors.NewInvalidTransition("status cannot be set directly", map[string]any{"status": requested})
	}

	grievance, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeStaffActor(ctx, actorStaffID, grievance); err != nil {
		return nil, err
	}
	if grievance.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition("grievance already finalized", map[string]any{
			"grievance_id": grievance.ID,
			"status":       grievance.Status,
		})
	}

	oldStatus := grievance.Status
	if requested == domain.StatusResolved {
		now := time.Now()
		grievance.Status = domain.StatusVerification
		grievance.ResolutionProposedAt = &now
		grievance.ResolvedBy = &actorStaffID
		if remarks != "" {
			grievance.ResolutionRemarks = &remarks
		}
	} else {
		grievance.Status = requested
	}

	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordStatusChange(ctx, domain.AuthorTypeStaff, &actorStaffID, grievance.ID, oldStatus, grievance.Status, remarks)

	if grievance.Status == domain.StatusVerification {
		s.publishEvent(ctx, events.Event{
			Type:        events.EventVerificationRequested,
			GrievanceID: grievance.ID,
			Actor:       staffActor(actorStaffID),
			Payload: events.VerificationRequestedPayload{
				Category:          grievance.Category,
				StudentEmail:      grievance.Email,
				ResolutionRemarks: remarks,
				WindowHours:       s.windowHours,
				AssignedTo:        grievance.AssignedTo,
			},
		})
	} else {
		s.publishEvent(ctx, events.Event{
			Type:        events.EventGrievanceStatusChanged,
			GrievanceID: grievance.ID,
			Actor:       staffActor(actorStaffID),
			Payload: events.GrievanceStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: grievance.Status,
				Remarks:   remarks,
			},
		})
	}
	return grievance, nil
}

// VerifyResolution records the submitter's accept/reject decision on a
// proposed resolution. Reject fully reopens the grievance but keeps the
// assignment so it stays routed to the same staff member.
func (s *GrievanceService) VerifyResolution(ctx context.Context, userID, grievanceID string, accept bool, feedback string) (*domain.Grievance, error) {
	grievance, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if grievance.UserID != userID {
		return nil, apperrors.NewPermissionDenied("only the submitter may verify a resolution")
	}
	if grievance.Status != domain.StatusVerification {
		return nil, apperrors.NewConflict("grievance is not awaiting verification", map[string]any{
			"grievance_id": grievance.ID,
			"status":       grievance.Status,
		})
	}

	oldStatus := grievance.Status
	if accept {
		grievance.Status = domain.StatusResolved
	} else {
		grievance.Status = domain.StatusPending
	}

	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordStatusChange(ctx, domain.AuthorTypeUser, &userID, grievance.ID, oldStatus, grievance.Status, feedback)

	s.publishEvent(ctx, events.Event{
		Type:        events.EventResolutionVerified,
		GrievanceID: grievance.ID,
		Actor:       userActor(userID),
		Payload: events.ResolutionVerifiedPayload{
			Accepted:   accept,
			Feedback:   feedback,
			AssignedTo: grievance.AssignedTo,
			AssignedBy: grievance.AssignedBy,
		},
	})
	return grievance, nil
}

// RequestExtension records a staff proposal to push back the deadline. The
// grievance status itself does not change.
func (s *GrievanceService) RequestExtension(ctx context.Context, staffID, grievanceID, requestedDate, reason string) (*domain.Grievance, error) {
	grievance, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if grievance.AssignedTo == nil || *grievance.AssignedTo != staffID {
		return nil, apperrors.NewPermissionDenied("only the assigned staff member may request an extension")
	}
	if grievance.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition("grievance already finalized", map[string]any{
			"grievance_id": grievance.ID,
			"status":       grievance.Status,
		})
	}

	date, err := parseDate(requestedDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid requested date", map[string]any{"requested_date": requestedDate})
	}

	grievance.Extension = &domain.ExtensionRequest{
		RequestedDate: date,
		Reason:        strings.TrimSpace(reason),
		Status:        domain.ExtensionPending,
	}
	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordExtensionChange(ctx, &staffID, grievance.ID, nil, grievance.Extension)
	return grievance, nil
}

// ResolveExtension approves or rejects a pending extension request. Approval
// moves the deadline to the requested date; rejection leaves it untouched.
func (s *GrievanceService) ResolveExtension(ctx context.Context, adminID, grievanceID string, approve bool) (*domain.Grievance, error) {
	grievance, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if err := s.directory.AuthorizeDepartmentAdmin(ctx, adminID, grievance.Category); err != nil {
		return nil, err
	}
	if grievance.Extension == nil || grievance.Extension.Status != domain.ExtensionPending {
		return nil, apperrors.NewConflict("no pending extension request", map[string]any{"grievance_id": grievance.ID})
	}

	before := *grievance.Extension
	if approve {
		requested := grievance.Extension.RequestedDate
		grievance.DeadlineDate = &requested
		grievance.Extension.Status = domain.ExtensionApproved
	} else {
		grievance.Extension.Status = domain.ExtensionRejected
	}

	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordExtensionChange(ctx, &adminID, grievance.ID, &before, grievance.Extension)

	s.publishEvent(ctx, events.Event{
		Type:        events.EventExtensionResolved,
		GrievanceID: grievance.ID,
		Actor:       staffActor(adminID),
		Payload: events.ExtensionResolvedPayload{
			Approved:      approve,
			RequestedDate: &grievance.Extension.RequestedDate,
			AssignedTo:    grievance.AssignedTo,
		},
	})
	return grievance, nil
}

// GetByCategory returns a department queue, newest first. Restricted to the
// master admin and admins of that department.
func (s *GrievanceService) GetByCategory(ctx context.Context, actorID, category string) ([]domain.Grievance, error) {
	if err := s.directory.AuthorizeDepartmentAdmin(ctx, actorID, category); err != nil {
		return nil, err
	}
	result, err := s.grievances.ListByCategory(ctx, category)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetAll returns every grievance, newest first. Master admin only.
func (s *GrievanceService) GetAll(ctx context.Context, actorID string) ([]domain.Grievance, error) {
	if !s.directory.IsMasterAdmin(actorID) {
		return nil, apperrors.NewPermissionDenied("master admin required")
	}
	result, err := s.grievances.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetAssignedTo returns the reduced projection for a staff member's own queue.
func (s *GrievanceService) GetAssignedTo(ctx context.Context, staffID string) ([]domain.GrievanceSummary, error) {
	result, err := s.grievances.ListAssignedSummaries(ctx, staffID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetByUser returns the submitter's own grievances, newest first.
func (s *GrievanceService) GetByUser(ctx context.Context, userID string) ([]domain.Grievance, error) {
	result, err := s.grievances.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetForUser fetches a grievance ensuring the caller submitted it.
func (s *GrievanceService) GetForUser(ctx context.Context, userID, grievanceID string) (*domain.Grievance, error) {
	grievance, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if grievance.UserID != userID {
		return nil, apperrors.NewPermissionDenied("access denied")
	}
	return grievance, nil
}

// ListMessages returns the chat thread oldest-first.
func (s *GrievanceService) ListMessages(ctx context.Context, actorID string, isStaff bool, grievanceID string) ([]domain.GrievanceMessage, error) {
	grievance, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeThreadAccess(ctx, actorID, isStaff, grievance); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByGrievance(ctx, grievanceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// AddMessage appends to the chat thread.
func (s *GrievanceService) AddMessage(ctx context.Context, actorID string, isStaff bool, grievanceID, body string) (*domain.GrievanceMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}
	grievance, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeThreadAccess(ctx, actorID, isStaff, grievance); err != nil {
		return nil, err
	}

	authorType := domain.AuthorTypeUser
	if isStaff {
		authorType = domain.AuthorTypeStaff
	}
	msg := &domain.GrievanceMessage{
		GrievanceID: grievance.ID,
		AuthorType:  authorType,
		AuthorID:    &actorID,
		Body:        strings.TrimSpace(body),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return msg, nil
}

// ListHistory returns the audit trail for staff with access to the grievance.
func (s *GrievanceService) ListHistory(ctx context.Context, actorStaffID, grievanceID string) ([]domain.GrievanceHistory, error) {
	if s.history == nil {
		return []domain.GrievanceHistory{}, nil
	}
	grievance, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeStaffActor(ctx, actorStaffID, grievance); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByGrievance(ctx, grievanceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *GrievanceService) loadGrievance(ctx context.Context, id string) (*domain.Grievance, error) {
	grievance, err := s.grievances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("grievance", map[string]any{"grievance_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return grievance, nil
}

// authorizeStaffActor admits the assigned staff member, an admin of the
// grievance's department, or the master admin.
func (s *GrievanceService) authorizeStaffActor(ctx context.Context, staffID string, grievance *domain.Grievance) error {
	if grievance.AssignedTo != nil && *grievance.AssignedTo == staffID {
		return nil
	}
	return s.directory.AuthorizeDepartmentAdmin(ctx, staffID, grievance.Category)
}

func (s *GrievanceService) authorizeThreadAccess(ctx context.Context, actorID string, isStaff bool, grievance *domain.Grievance) error {
	if !isStaff {
		if grievance.UserID != actorID {
			return apperrors.NewPermissionDenied("access denied")
		}
		return nil
	}
	return s.authorizeStaffActor(ctx, actorID, grievance)
}

func (s *GrievanceService) recordStatusChange(ctx context.Context, actorType domain.MessageAuthorType, actorID *string, grievanceID string, oldStatus, newStatus domain.GrievanceStatus, remarks string) {
	if s.history == nil {
		return
	}
	entry := &domain.GrievanceHistory{
		GrievanceID:   grievanceID,
		ChangedByType: actorType,
		ChangedByID:   actorID,
		ChangeType:    domain.ChangeTypeStatus,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status":  newStatus,
			"remarks": remarks,
		},
	}
	_ = s.history.Create(ctx, entry)
}

func (s *GrievanceService) recordExtensionChange(ctx context.Context, actorID *string, grievanceID string, before, after *domain.ExtensionRequest) {
	if s.history == nil {
		return
	}
	entry := &domain.GrievanceHistory{
		GrievanceID:   grievanceID,
		ChangedByType: domain.AuthorTypeStaff,
		ChangedByID:   actorID,
		ChangeType:    domain.ChangeTypeExtension,
		OldValue:      extensionValue(before),
		NewValue:      extensionValue(after),
	}
	_ = s.history.Create(ctx, entry)
}

func extensionValue(ext *domain.ExtensionRequest) map[string]any {
	if ext == nil {
		return map[string]any{}
	}
	return map[string]any{
		"requested_date": ext.RequestedDate,
		"reason":         ext.Reason,
		"status":         ext.Status,
	}
}

func (s *GrievanceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{
		Type:   domain.SubjectTypeUser,
		UserID: &userID,
	}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeStaff,
		StaffID: &staffID,
	}
}

// parseDate accepts a plain calendar date or a full RFC3339 timestamp.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
