package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-ops/grievance-service/internal/domain"
)

// GrievanceRepository encapsulates grievance persistence. Every mutating
// method is a single statement so concurrent writers cannot interleave
// partial updates on the same record.
type GrievanceRepository interface {
	Create(ctx context.Context, grievance *domain.Grievance) error
	Update(ctx context.Context, grievance *domain.Grievance) error
	GetByID(ctx context.Context, id string) (*domain.Grievance, error)
	ListAll(ctx context.Context) ([]domain.Grievance, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Grievance, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Grievance, error)
	ListAssignedSummaries(ctx context.Context, staffID string) ([]domain.GrievanceSummary, error)
	ResetAssignee(ctx context.Context, staffID string) (int64, error)
	ResolveStaleVerifications(ctx context.Context, before time.Time, resolvedBy string) (int64, error)
}

type grievanceRepository struct {
	pool *pgxpool.Pool
}

// NewGrievanceRepository instantiates repository.
func NewGrievanceRepository(pool *pgxpool.Pool) GrievanceRepository {
	return &grievanceRepository{pool: pool}
}

const grievanceColumns = `id, user_id, name, email, phone, reg_id, student_program, category, message,
               attachment, assigned_to, assigned_role, assigned_by, deadline_date,
               extension_requested_at, extension_reason, extension_status,
               status, resolved_by, resolution_remarks, resolution_proposed_at,
               created_at, updated_at`

func (r *grievanceRepository) Create(ctx context.Context, grievance *domain.Grievance) error {
	const query = `
        INSERT INTO grievances (user_id, name, email, phone, reg_id, student_program, category, message, attachment, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		grievance.UserID,
		grievance.Name,
		grievance.Email,
		grievance.Phone,
		grievance.RegID,
		grievance.StudentProgram,
		grievance.Category,
		grievance.Message,
		grievance.Attachment,
		grievance.Status,
	).Scan(&grievance.ID, &grievance.CreatedAt, &grievance.UpdatedAt)
}

func (r *grievanceRepository) Update(ctx context.Context, grievance *domain.Grievance) error {
	const query = `
        UPDATE grievances SET assigned_to=$1, assigned_role=$2, assigned_by=$3, deadline_date=$4,
            extension_requested_at=$5, extension_reason=$6, extension_status=$7,
            status=$8, resolved_by=$9, resolution_remarks=$10, resolution_proposed_at=$11,
            attachment=$12, updated_at=NOW()
        WHERE id=$13
        RETURNING updated_at`

	var extRequestedAt *time.Time
	var extReason *string
	var extStatus *domain.ExtensionStatus
	if grievance.Extension != nil {
		extRequestedAt = &grievance.Extension.RequestedDate
		extReason = &grievance.Extension.Reason
		extStatus = &grievance.Extension.Status
	}

	return r.pool.QueryRow(ctx, query,
		grievance.AssignedTo,
		grievance.AssignedRole,
		grievance.AssignedBy,
		grievance.DeadlineDate,
		extRequestedAt,
		extReason,
		extStatus,
		grievance.Status,
		grievance.ResolvedBy,
		grievance.ResolutionRemarks,
		grievance.ResolutionProposedAt,
		grievance.Attachment,
		grievance.ID,
	).Scan(&grievance.UpdatedAt)
}

func (r *grievanceRepository) GetByID(ctx context.Context, id string) (*domain.Grievance, error) {
	query := `SELECT ` + grievanceColumns + ` FROM grievances WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanGrievance(row)
}

func (r *grievanceRepository) ListAll(ctx context.Context) ([]domain.Grievance, error) {
	query := `SELECT ` + grievanceColumns + ` FROM grievances ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrievances(rows)
}

func (r *grievanceRepository) ListByCategory(ctx context.Context, category string) ([]domain.Grievance, error) {
	query := `SELECT ` + grievanceColumns + ` FROM grievances WHERE category=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrievances(rows)
}

func (r *grievanceRepository) ListByUser(ctx context.Context, userID string) ([]domain.Grievance, error) {
	query := `SELECT ` + grievanceColumns + ` FROM grievances WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrievances(rows)
}

func (r *grievanceRepository) ListAssignedSummaries(ctx context.Context, staffID string) ([]domain.GrievanceSummary, error) {
	const query = `
        SELECT id, name, reg_id, category, message, status, deadline_date, created_at
        FROM grievances WHERE assigned_to=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.GrievanceSummary
	for rows.Next() {
		var summary domain.GrievanceSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.RegID,
			&summary.Category,
			&summary.Message,
			&summary.Status,
			&summary.DeadlineDate,
			&summary.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

// ResetAssignee force-resets every grievance assigned to the staff member
// back to Pending/unassigned. One bulk statement so an interrupted demote
// cannot leave a partial cascade; re-running matches nothing and is safe.
func (r *grievanceRepository) ResetAssignee(ctx context.Context, staffID string) (int64, error) {
	const query = `
        UPDATE grievances
        SET status=$1, assigned_to=NULL, assigned_role=NULL, assigned_by=NULL, updated_at=NOW()
        WHERE assigned_to=$2`
	cmd, err := r.pool.Exec(ctx, query, domain.StatusPending, staffID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// ResolveStaleVerifications finalizes Verification grievances whose proposal
// is older than the cutoff. Used by the timed sweep.
func (r *grievanceRepository) ResolveStaleVerifications(ctx context.Context, before time.Time, resolvedBy string) (int64, error) {
	const query = `
        UPDATE grievances
        SET status=$1, resolved_by=$2, updated_at=NOW()
        WHERE status=$3 AND resolution_proposed_at IS NOT NULL AND resolution_proposed_at < $4`
	cmd, err := r.pool.Exec(ctx, query, domain.StatusResolved, resolvedBy, domain.StatusVerification, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanGrievance(row pgx.Row) (*domain.Grievance, error) {
	var grievance domain.Grievance
	var extRequestedAt *time.Time
	var extReason *string
	var extStatus *domain.ExtensionStatus

	if err := row.Scan(
		&grievance.ID,
		&grievance.UserID,
		&grievance.Name,
		&grievance.Email,
		&grievance.Phone,
		&grievance.RegID,
		&grievance.StudentProgram,
		&grievance.Category,
		&grievance.Message,
		&grievance.Attachment,
		&grievance.AssignedTo,
		&grievance.AssignedRole,
		&grievance.AssignedBy,
		&grievance.DeadlineDate,
		&extRequestedAt,
		&extReason,
		&extStatus,
		&grievance.Status,
		&grievance.ResolvedBy,
		&grievance.ResolutionRemarks,
		&grievance.ResolutionProposedAt,
		&grievance.CreatedAt,
		&grievance.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if extStatus != nil && extRequestedAt != nil {
		grievance.Extension = &domain.ExtensionRequest{
			RequestedDate: *extRequestedAt,
			Status:        *extStatus,
		}
		if extReason != nil {
			grievance.Extension.Reason = *extReason
		}
	}
	return &grievance, nil
}

func scanGrievances(rows pgx.Rows) ([]domain.Grievance, error) {
	var result []domain.Grievance
	for rows.Next() {
		grievance, err := scanGrievance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *grievance)
	}
	return result, rows.Err()
}
