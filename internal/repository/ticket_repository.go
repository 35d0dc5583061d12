package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicenest/helpdesk/internal/domain"
)

// TicketFilter captures organization listing parameters.
type TicketFilter struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	Type       *domain.TicketType
	AssigneeID *string
	Search     *string
	Limit      int
	Offset     int
}

// TicketListing is a ticket row enriched with joined display names.
type TicketListing struct {
	Ticket        domain.Ticket
	CreatedByName string
	AssigneeName  *string
	TeamName      *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetForUpdate reads the row under an exclusive lock. Only meaningful
	// inside a TxManager unit of work.
	GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	// UpdateFields writes the given column values plus a bumped
	// updated_at. Returns the number of rows affected.
	UpdateFields(ctx context.Context, id string, fields map[string]any) (int64, error)
	GetListing(ctx context.Context, id string) (*TicketListing, error)
	ListByOrganization(ctx context.Context, orgID string, filter TicketFilter) ([]TicketListing, error)
	Search(ctx context.Context, orgID, term string) ([]domain.Ticket, error)
	ListAssigned(ctx context.Context, userID string) ([]TicketListing, error)
	Overview(ctx context.Context, orgID string, since time.Time, rangeDays int) (*domain.DashboardOverview, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, status, priority, type,
               created_by, assignee_id, assigned_team, organization_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, status, priority, type, created_by, assignee_id, assigned_team, organization_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at, updated_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Type,
		ticket.CreatedBy,
		ticket.AssigneeID,
		ticket.AssignedTeam,
		ticket.OrganizationID,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Type,
		&ticket.CreatedBy,
		&ticket.AssigneeID,
		&ticket.AssignedTeam,
		&ticket.OrganizationID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) (int64, error) {
	// Deterministic column order keeps the statement stable across calls.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		args = append(args, fields[name])
		sets = append(sets, fmt.Sprintf("%s=$%d", name, len(args)))
	}
	sets = append(sets, "updated_at=NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

const listingColumns = `
        t.id, t.title, t.description, t.status, t.priority, t.type,
        t.created_by, t.assignee_id, t.assigned_team, t.organization_id, t.created_at, t.updated_at,
        COALESCE(TRIM(cb.first_name || ' ' || cb.last_name), '') AS created_by_name,
        TRIM(asg.first_name || ' ' || asg.last_name) AS assignee_name,
        tm.title AS team_name`

const listingJoins = `
    FROM tickets t
    LEFT JOIN users cb ON t.created_by = cb.id
    LEFT JOIN users asg ON t.assignee_id = asg.id
    LEFT JOIN teams tm ON t.assigned_team = tm.id`

func (r *ticketRepository) GetListing(ctx context.Context, id string) (*TicketListing, error) {
	query := `SELECT` + listingColumns + listingJoins + ` WHERE t.id=$1`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	listings, err := scanListings(rows)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &listings[0], nil
}

func (r *ticketRepository) ListByOrganization(ctx context.Context, orgID string, filter TicketFilter) ([]TicketListing, error) {
	clauses := []string{"t.organization_id = $1"}
	args := []any{orgID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("t.type = $%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assignee_id = $%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.title) LIKE %s OR LOWER(t.description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT%s%s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		listingColumns, listingJoins, strings.Join(clauses, " AND "), limit, offset)

	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *ticketRepository) Search(ctx context.Context, orgID, term string) ([]domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets
        WHERE organization_id = $1 AND (id LIKE $2 OR title ILIKE $2 OR description ILIKE $2)
        ORDER BY created_at DESC`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, orgID, "%"+term+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Type,
			&ticket.CreatedBy,
			&ticket.AssigneeID,
			&ticket.AssignedTeam,
			&ticket.OrganizationID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListAssigned(ctx context.Context, userID string) ([]TicketListing, error) {
	query := `SELECT` + listingColumns + listingJoins + ` WHERE t.assignee_id=$1 ORDER BY t.created_at DESC`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *ticketRepository) Overview(ctx context.Context, orgID string, since time.Time, rangeDays int) (*domain.DashboardOverview, error) {
	db := dbFrom(ctx, r.pool)
	overview := &domain.DashboardOverview{}

	if err := db.QueryRow(ctx, `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'open'),
               COUNT(*) FILTER (WHERE status = 'resolved')
        FROM tickets WHERE organization_id=$1 AND created_at >= $2`,
		orgID, since,
	).Scan(&overview.TotalTickets, &overview.OpenTickets, &overview.ResolvedTickets); err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, `
        SELECT status, COUNT(*) FROM tickets
        WHERE organization_id=$1 AND created_at >= $2 GROUP BY status`, orgID, since)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var sc domain.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		overview.Status = append(overview.Status, sc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(ctx, `
        SELECT priority, COUNT(*) FROM tickets
        WHERE organization_id=$1 AND created_at >= $2 GROUP BY priority`, orgID, since)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var pc domain.PriorityCount
		if err := rows.Scan(&pc.Priority, &pc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		overview.Priority = append(overview.Priority, pc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(ctx, `
        SELECT DATE(created_at) AS day, COUNT(*) FROM tickets
        WHERE organization_id=$1 AND created_at >= $2
        GROUP BY day ORDER BY day DESC LIMIT $3`, orgID, since, rangeDays)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var dc domain.DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		overview.Daily = append(overview.Daily, dc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(ctx, `
        SELECT tm.title, COUNT(t.id) FROM tickets t
        LEFT JOIN teams tm ON t.assigned_team = tm.id
        WHERE t.organization_id=$1 AND t.created_at >= $2
        GROUP BY tm.title`, orgID, since)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var tc domain.TeamCount
		if err := rows.Scan(&tc.Team, &tc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		overview.Teams = append(overview.Teams, tc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(ctx, `
        SELECT id, title, status, priority, created_at FROM tickets
        WHERE organization_id=$1 AND created_at >= $2
        ORDER BY created_at DESC LIMIT 10`, orgID, since)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var rt domain.RecentTicket
		if err := rows.Scan(&rt.ID, &rt.Title, &rt.Status, &rt.Priority, &rt.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		overview.Recent = append(overview.Recent, rt)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return overview, nil
}

func scanListings(rows pgx.Rows) ([]TicketListing, error) {
	var result []TicketListing
	for rows.Next() {
		var listing TicketListing
		if err := rows.Scan(
			&listing.Ticket.ID,
			&listing.Ticket.Title,
			&listing.Ticket.Description,
			&listing.Ticket.Status,
			&listing.Ticket.Priority,
			&listing.Ticket.Type,
			&listing.Ticket.CreatedBy,
			&listing.Ticket.AssigneeID,
			&listing.Ticket.AssignedTeam,
			&listing.Ticket.OrganizationID,
			&listing.Ticket.CreatedAt,
			&listing.Ticket.UpdatedAt,
			&listing.CreatedByName,
			&listing.AssigneeName,
			&listing.TeamName,
		); err != nil {
			return nil, err
		}
		result = append(result, listing)
	}
	return result, rows.Err()
}
