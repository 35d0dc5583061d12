package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicenest/helpdesk/internal/domain"
)

// TeamRepository manages persistence for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListByOrganization(ctx context.Context, orgID string) ([]domain.Team, error)
	Delete(ctx context.Context, id string) error
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (id, organization_id, title, description, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		team.ID,
		team.OrganizationID,
		team.Title,
		team.Description,
		team.CreatedBy,
	).Scan(&team.CreatedAt)
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `
        SELECT id, organization_id, title, description, created_by, created_at
        FROM teams WHERE id=$1`
	var team domain.Team
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.OrganizationID,
		&team.Title,
		&team.Description,
		&team.CreatedBy,
		&team.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) ListByOrganization(ctx context.Context, orgID string) ([]domain.Team, error) {
	const query = `
        SELECT t.id, t.organization_id, t.title, t.description, t.created_by,
               COALESCE(TRIM(u.first_name || ' ' || u.last_name), '') AS created_by_name,
               t.created_at
        FROM teams t
        LEFT JOIN users u ON t.created_by = u.id
        WHERE t.organization_id=$1
        ORDER BY t.created_at ASC`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(
			&team.ID,
			&team.OrganizationID,
			&team.Title,
			&team.Description,
			&team.CreatedBy,
			&team.CreatedByName,
			&team.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, `DELETE FROM teams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
