package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicenest/helpdesk/internal/domain"
)

// RoleRepository manages organization-defined roles and their assignment.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	ListByOrganization(ctx context.Context, orgID string) ([]domain.Role, error)
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, userID, roleID string) error
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository constructs repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
        INSERT INTO roles (id, organization_id, title, description, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		role.ID,
		role.OrganizationID,
		role.Title,
		role.Description,
		role.CreatedBy,
	).Scan(&role.CreatedAt)
}

func (r *roleRepository) ListByOrganization(ctx context.Context, orgID string) ([]domain.Role, error) {
	const query = `
        SELECT id, organization_id, title, description, created_by, created_at
        FROM roles WHERE organization_id=$1 ORDER BY created_at ASC`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID,
			&role.OrganizationID,
			&role.Title,
			&role.Description,
			&role.CreatedBy,
			&role.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

func (r *roleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := dbFrom(ctx, r.pool).Exec(ctx, `DELETE FROM roles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleRepository) Assign(ctx context.Context, userID, roleID string) error {
	const query = `INSERT INTO user_roles (user_id, role_id) VALUES ($1,$2)`
	_, err := dbFrom(ctx, r.pool).Exec(ctx, query, userID, roleID)
	return err
}
