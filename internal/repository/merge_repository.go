package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicenest/helpdesk/internal/domain"
)

// MergeRepository records master/merged ticket relationships.
type MergeRepository interface {
	CreateLink(ctx context.Context, link *domain.MergeLink) error
	// MasterOf returns the master ticket id when ticketID is a merged
	// member, or nil when it is not.
	MasterOf(ctx context.Context, ticketID string) (*string, error)
	ListMerged(ctx context.Context, masterID string) ([]domain.MergedTicketSummary, error)
	// HasLinks reports whether ticketID appears on either side of any link.
	HasLinks(ctx context.Context, ticketID string) (bool, error)
}

type mergeRepository struct {
	pool *pgxpool.Pool
}

// NewMergeRepository constructs repository.
func NewMergeRepository(pool *pgxpool.Pool) MergeRepository {
	return &mergeRepository{pool: pool}
}

func (r *mergeRepository) CreateLink(ctx context.Context, link *domain.MergeLink) error {
	const query = `
        INSERT INTO ticket_merges (master_ticket_id, merged_ticket_id, merged_by)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		link.MasterTicketID,
		link.MergedTicketID,
		link.MergedBy,
	).Scan(&link.ID, &link.CreatedAt)
}

func (r *mergeRepository) MasterOf(ctx context.Context, ticketID string) (*string, error) {
	const query = `
        SELECT master_ticket_id FROM ticket_merges
        WHERE merged_ticket_id=$1 LIMIT 1`
	var master string
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(&master)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &master, nil
}

func (r *mergeRepository) ListMerged(ctx context.Context, masterID string) ([]domain.MergedTicketSummary, error) {
	const query = `
        SELECT t.id, t.title, t.status, t.priority
        FROM ticket_merges tm
        JOIN tickets t ON tm.merged_ticket_id = t.id
        WHERE tm.master_ticket_id=$1
        ORDER BY tm.created_at ASC`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, masterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MergedTicketSummary
	for rows.Next() {
		var summary domain.MergedTicketSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Status, &summary.Priority); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

func (r *mergeRepository) HasLinks(ctx context.Context, ticketID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM ticket_merges
            WHERE master_ticket_id=$1 OR merged_ticket_id=$1
        )`
	var exists bool
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
