package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicenest/helpdesk/internal/domain"
)

// CommentRepository manages ticket thread comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	// ListByTicket returns comments newest-first with author display names.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (id, ticket_id, user_id, message, is_internal, is_system)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		comment.ID,
		comment.TicketID,
		comment.UserID,
		comment.Message,
		comment.IsInternal,
		comment.System,
	).Scan(&comment.CreatedAt)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.user_id, c.message, c.is_internal, c.is_system,
               COALESCE(TRIM(u.first_name || ' ' || u.last_name), '') AS author_name,
               c.created_at
        FROM comments c
        LEFT JOIN users u ON c.user_id = u.id
        WHERE c.ticket_id=$1
        ORDER BY c.created_at DESC, c.id DESC`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.UserID,
			&comment.Message,
			&comment.IsInternal,
			&comment.System,
			&comment.AuthorName,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
