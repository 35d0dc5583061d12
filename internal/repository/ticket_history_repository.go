package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicenest/helpdesk/internal/domain"
)

// TicketHistoryRepository stores the append-only audit trail. Entries are
// never updated or deleted.
type TicketHistoryRepository interface {
	CreateBatch(ctx context.Context, entries []domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func (r *ticketHistoryRepository) CreateBatch(ctx context.Context, entries []domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_updates (ticket_id, field_name, old_value, new_value, updated_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	db := dbFrom(ctx, r.pool)
	for i := range entries {
		entry := &entries[i]
		if err := db.QueryRow(ctx, query,
			entry.TicketID,
			entry.FieldName,
			entry.OldValue,
			entry.NewValue,
			entry.UpdatedBy,
		).Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT u.id, u.ticket_id, u.field_name, u.old_value, u.new_value, u.updated_by,
               COALESCE(TRIM(us.first_name || ' ' || us.last_name), '') AS updated_by_name,
               u.created_at
        FROM ticket_updates u
        LEFT JOIN users us ON u.updated_by = us.id
        WHERE u.ticket_id=$1
        ORDER BY u.created_at DESC, u.id DESC`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketHistory
	for rows.Next() {
		var entry domain.TicketHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.FieldName,
			&entry.OldValue,
			&entry.NewValue,
			&entry.UpdatedBy,
			&entry.UpdatedByName,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
