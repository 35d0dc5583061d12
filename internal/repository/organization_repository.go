package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicenest/helpdesk/internal/domain"
)

// OrganizationRepository manages tenant records.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository constructs repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	const query = `
        INSERT INTO organizations (id, name, domain, city, country, primary_contact_name, primary_contact)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		org.ID,
		org.Name,
		org.Domain,
		org.City,
		org.Country,
		org.PrimaryContactName,
		org.PrimaryContact,
	).Scan(&org.CreatedAt)
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `
        SELECT id, name, domain, city, country, primary_contact_name, primary_contact, created_at
        FROM organizations WHERE id=$1`
	var org domain.Organization
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Domain,
		&org.City,
		&org.Country,
		&org.PrimaryContactName,
		&org.PrimaryContact,
		&org.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	const query = `
        SELECT id, name, domain, city, country, primary_contact_name, primary_contact, created_at
        FROM organizations ORDER BY created_at ASC`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Domain,
			&org.City,
			&org.Country,
			&org.PrimaryContactName,
			&org.PrimaryContact,
			&org.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, org)
	}
	return result, rows.Err()
}
