package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/events"
	"github.com/campus-ops/grievance-service/internal/repository"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// masterAdminDepartment is what checkAdminStatus reports for the master admin.
const masterAdminDepartment = "All"

// StaffService is the authoritative record of the department-admin hierarchy.
// Every privileged caller is verified against stored records, never against
// client-asserted role flags.
type StaffService struct {
	staff         repository.StaffRepository
	users         repository.UserRepository
	grievances    repository.GrievanceRepository
	dispatcher    events.Dispatcher
	cache         *redis.Client
	cacheTTL      time.Duration
	masterAdminID string
	logger        *zap.Logger
}

// StaffDependencies bundles what the staff directory needs.
type StaffDependencies struct {
	StaffRepo     repository.StaffRepository
	UserRepo      repository.UserRepository
	GrievanceRepo repository.GrievanceRepository
	Dispatcher    events.Dispatcher
	Cache         *redis.Client
	CacheTTL      time.Duration
	MasterAdminID string
	Logger        *zap.Logger
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		staff:         deps.StaffRepo,
		users:         deps.UserRepo,
		grievances:    deps.GrievanceRepo,
		dispatcher:    deps.Dispatcher,
		cache:         deps.Cache,
		cacheTTL:      deps.CacheTTL,
		masterAdminID: deps.MasterAdminID,
		logger:        logger,
	}
}

// IsMasterAdmin reports whether the id is the reserved master admin identity.
func (s *StaffService) IsMasterAdmin(id string) bool {
	return id != "" && id == s.masterAdminID
}

// GetStaff fetches a directory record.
func (s *StaffService) GetStaff(ctx context.Context, id string) (*domain.StaffRecord, error) {
	record, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return record, nil
}

// ListStaff returns records, optionally restricted to an exact department match.
func (s *StaffService) ListStaff(ctx context.Context, department *string) ([]domain.StaffRecord, error) {
	records, err := s.staff.List(ctx, department)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// AuthorizeDepartmentAdmin verifies that actorID may administer the given
// department: the master admin always may; otherwise the actor must be an
// active department admin of exactly that department.
func (s *StaffService) AuthorizeDepartmentAdmin(ctx context.Context, actorID, department string) error {
	if s.IsMasterAdmin(actorID) {
		return nil
	}
	record, err := s.staff.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewPermissionDenied("requester holds no staff record")
		}
		return apperrors.MapError(err)
	}
	if !record.IsDeptAdmin || record.AdminDepartment != department {
		return apperrors.NewPermissionDenied("requester is not admin of this department")
	}
	return nil
}

// Promote grants the target a department role. The master admin creates
// department heads; a department admin adds team members to their own
// department only. Missing target records are synthesized from the user
// directory.
func (s *StaffService) Promote(ctx context.Context, requesterID, targetID, department string) (*domain.StaffRecord, error) {
	if department == "" {
		return nil, apperrors.NewValidationError("department required", nil)
	}

	asHead := false
	switch {
	case s.IsMasterAdmin(requesterID):
		asHead = true
	default:
		requester, err := s.staff.GetByID(ctx, requesterID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewPermissionDenied("requester holds no staff record")
			}
			return nil, apperrors.MapError(err)
		}
		if !requester.IsDeptAdmin || requester.AdminDepartment != department {
			return nil, apperrors.NewPermissionDenied("only the master admin or the department's admin may promote")
		}
	}

	record, err := s.staff.GetByID(ctx, targetID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		user, userErr := s.users.GetByID(ctx, targetID)
		if userErr != nil {
			if errors.Is(userErr, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"user_id": targetID})
			}
			return nil, apperrors.MapError(userErr)
		}
		record = &domain.StaffRecord{ID: user.ID, FullName: user.FullName}
	}

	if asHead {
		// a department keeps at most one head; the old head loses the role
		// in the same operation the new one gains it
		demoted, err := s.staff.DemoteDepartmentHead(ctx, department, targetID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		for _, id := range demoted {
			s.invalidateAdminStatus(ctx, id)
			s.logger.Info("prior department head demoted",
				zap.String("staff_id", id),
				zap.String("department", department))
		}
	}

	record.AdminDepartment = department
	record.IsDeptAdmin = asHead
	if err := s.staff.Upsert(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateAdminStatus(ctx, targetID)
	return record, nil
}

// DemoteResult reports the demote cascade outcome.
type DemoteResult struct {
	ModifiedGrievanceCount int64
}

// Demote clears the target's department role and force-resets every grievance
// assigned to them back to Pending/unassigned. An employee losing authority
// must not leave invisibly-assigned work behind, so the cascade is mandatory.
// Demoting an already-demoted or unknown id is accepted and resets nothing.
func (s *StaffService) Demote(ctx context.Context, requesterID, targetID string) (*DemoteResult, error) {
	if !s.IsMasterAdmin(requesterID) {
		requester, err := s.staff.GetByID(ctx, requesterID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewPermissionDenied("requester holds no staff record")
			}
			return nil, apperrors.MapError(err)
		}
		if !requester.IsDeptAdmin {
			return nil, apperrors.NewPermissionDenied("department admin required")
		}
	}

	if err := s.staff.ClearRole(ctx, targetID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	count, err := s.grievances.ResetAssignee(ctx, targetID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateAdminStatus(ctx, targetID)

	s.publishEvent(ctx, events.Event{
		Type:  events.EventStaffDemoted,
		Actor: events.Actor{Type: domain.SubjectTypeStaff, StaffID: &requesterID},
		Payload: events.StaffDemotedPayload{
			StaffID:        targetID,
			GrievanceCount: count,
		},
	})
	return &DemoteResult{ModifiedGrievanceCount: count}, nil
}

// CheckAdminStatus summarizes the caller's authority. The master admin id is
// special-cased to report department "All"; other ids resolve through the
// directory. Results are cached briefly in Redis since role-gated views poll
// this on every page load.
func (s *StaffService) CheckAdminStatus(ctx context.Context, id string) (*domain.AdminStatus, error) {
	if s.IsMasterAdmin(id) {
		return &domain.AdminStatus{
			IsAdmin:         true,
			IsDeptAdmin:     true,
			Departments:     []string{masterAdminDepartment},
			AdminDepartment: masterAdminDepartment,
		}, nil
	}

	if cached := s.cachedAdminStatus(ctx, id); cached != nil {
		return cached, nil
	}

	status := &domain.AdminStatus{Departments: []string{}}
	record, err := s.staff.GetByID(ctx, id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if record != nil {
		status.IsAdmin = record.HasDepartmentRole()
		status.IsDeptAdmin = record.IsDeptAdmin
		status.AdminDepartment = record.AdminDepartment
		if record.AdminDepartment != "" {
			status.Departments = []string{record.AdminDepartment}
		}
	}
	s.storeAdminStatus(ctx, id, status)
	return status, nil
}

func (s *StaffService) cachedAdminStatus(ctx context.Context, id string) *domain.AdminStatus {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, adminStatusKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var status domain.AdminStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil
	}
	return &status
}

func (s *StaffService) storeAdminStatus(ctx context.Context, id string, status *domain.AdminStatus) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, adminStatusKey(id), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("admin status cache write failed", zap.Error(err))
	}
}

func (s *StaffService) invalidateAdminStatus(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, adminStatusKey(id)).Err(); err != nil {
		s.logger.Debug("admin status cache invalidation failed", zap.Error(err))
	}
}

func adminStatusKey(id string) string {
	return "admin_status:" + id
}

func (s *StaffService) publishEvent(ctx context.Context, event events.Event) {
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
