package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicenest/helpdesk/internal/domain"
)

// WatcherRepository manages ticket watcher membership.
type WatcherRepository interface {
	// Add subscribes the user; duplicate pairs are a silent no-op.
	// Returns whether a new row was inserted.
	Add(ctx context.Context, ticketID, userID string) (bool, error)
	// Remove unsubscribes the user. Returns whether a row existed.
	Remove(ctx context.Context, ticketID, userID string) (bool, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Watcher, error)
}

type watcherRepository struct {
	pool *pgxpool.Pool
}

// NewWatcherRepository constructs repository.
func NewWatcherRepository(pool *pgxpool.Pool) WatcherRepository {
	return &watcherRepository{pool: pool}
}

func (r *watcherRepository) Add(ctx context.Context, ticketID, userID string) (bool, error) {
	const query = `
        INSERT INTO ticket_watchers (ticket_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT (ticket_id, user_id) DO NOTHING`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query, ticketID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *watcherRepository) Remove(ctx context.Context, ticketID, userID string) (bool, error) {
	const query = `DELETE FROM ticket_watchers WHERE ticket_id=$1 AND user_id=$2`
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query, ticketID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *watcherRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Watcher, error) {
	const query = `
        SELECT w.ticket_id, w.user_id,
               COALESCE(TRIM(u.first_name || ' ' || u.last_name), '') AS name,
               w.created_at
        FROM ticket_watchers w
        JOIN users u ON w.user_id = u.id
        WHERE w.ticket_id=$1`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Watcher
	for rows.Next() {
		var watcher domain.Watcher
		if err := rows.Scan(&watcher.TicketID, &watcher.UserID, &watcher.Name, &watcher.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, watcher)
	}
	return result, rows.Err()
}
