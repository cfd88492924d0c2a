package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-ops/grievance-service/internal/domain"
)

// HistoryRepository stores grievance audit entries.
type HistoryRepository interface {
	Create(ctx context.Context, history *domain.GrievanceHistory) error
	ListByGrievance(ctx context.Context, grievanceID string) ([]domain.GrievanceHistory, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Create(ctx context.Context, history *domain.GrievanceHistory) error {
	const query = `
        INSERT INTO grievance_history (grievance_id, changed_by_type, changed_by_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		history.GrievanceID,
		history.ChangedByType,
		history.ChangedByID,
		history.ChangeType,
		history.OldValue,
		history.NewValue,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *historyRepository) ListByGrievance(ctx context.Context, grievanceID string) ([]domain.GrievanceHistory, error) {
	const query = `
        SELECT id, grievance_id, changed_by_type, changed_by_id, change_type, old_value, new_value, created_at
        FROM grievance_history WHERE grievance_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, grievanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.GrievanceHistory
	for rows.Next() {
		var history domain.GrievanceHistory
		if err := rows.Scan(
			&history.ID,
			&history.GrievanceID,
			&history.ChangedByType,
			&history.ChangedByID,
			&history.ChangeType,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
