package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-ops/grievance-service/internal/domain"
)

// StaffRepository handles persistence for staff directory records.
type StaffRepository interface {
	Upsert(ctx context.Context, staff *domain.StaffRecord) error
	GetByID(ctx context.Context, id string) (*domain.StaffRecord, error)
	List(ctx context.Context, department *string) ([]domain.StaffRecord, error)
	ClearRole(ctx context.Context, id string) error
	DemoteDepartmentHead(ctx context.Context, department, exceptID string) ([]string, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Upsert(ctx context.Context, staff *domain.StaffRecord) error {
	const query = `
        INSERT INTO staff_records (id, full_name, admin_department, is_dept_admin)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (id) DO UPDATE
        SET full_name=EXCLUDED.full_name, admin_department=EXCLUDED.admin_department,
            is_dept_admin=EXCLUDED.is_dept_admin, updated_at=NOW()
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		staff.ID,
		staff.FullName,
		staff.AdminDepartment,
		staff.IsDeptAdmin,
	).Scan(&staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffRecord, error) {
	const query = `
        SELECT id, full_name, admin_department, is_dept_admin, created_at, updated_at
        FROM staff_records WHERE id=$1`

	var staff domain.StaffRecord
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&staff.ID,
		&staff.FullName,
		&staff.AdminDepartment,
		&staff.IsDeptAdmin,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, department *string) ([]domain.StaffRecord, error) {
	query := `
        SELECT id, full_name, admin_department, is_dept_admin, created_at, updated_at
        FROM staff_records`
	args := []any{}
	if department != nil {
		query += ` WHERE admin_department=$1`
		args = append(args, *department)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffRecord
	for rows.Next() {
		var staff domain.StaffRecord
		if err := rows.Scan(
			&staff.ID,
			&staff.FullName,
			&staff.AdminDepartment,
			&staff.IsDeptAdmin,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

// ClearRole resets the record to the no-department state. Records are never
// hard-deleted; a missing id is reported as pgx.ErrNoRows.
func (r *staffRepository) ClearRole(ctx context.Context, id string) error {
	const query = `
        UPDATE staff_records
        SET admin_department='', is_dept_admin=FALSE, updated_at=NOW()
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DemoteDepartmentHead strips head status from any current head of the
// department other than exceptID, returning the demoted ids. Keeps the
// one-head-per-department invariant when a new head is promoted.
func (r *staffRepository) DemoteDepartmentHead(ctx context.Context, department, exceptID string) ([]string, error) {
	const query = `
        UPDATE staff_records
        SET is_dept_admin=FALSE, admin_department='', updated_at=NOW()
        WHERE admin_department=$1 AND is_dept_admin=TRUE AND id<>$2
        RETURNING id`
	rows, err := r.pool.Query(ctx, query, department, exceptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
