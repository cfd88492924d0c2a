package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-ops/grievance-service/internal/domain"
)

// MessageRepository manages the chat thread attached to a grievance.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.GrievanceMessage) error
	ListByGrievance(ctx context.Context, grievanceID string) ([]domain.GrievanceMessage, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.GrievanceMessage) error {
	const query = `
        INSERT INTO grievance_messages (grievance_id, author_type, author_id, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.GrievanceID,
		msg.AuthorType,
		msg.AuthorID,
		msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt)
}

// ListByGrievance returns the thread oldest-first, the order chat views render in.
func (r *messageRepository) ListByGrievance(ctx context.Context, grievanceID string) ([]domain.GrievanceMessage, error) {
	const query = `
        SELECT id, grievance_id, author_type, author_id, body, created_at
        FROM grievance_messages WHERE grievance_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, grievanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.GrievanceMessage
	for rows.Next() {
		var msg domain.GrievanceMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.GrievanceID,
			&msg.AuthorType,
			&msg.AuthorID,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
