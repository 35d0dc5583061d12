package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/servicenest/helpdesk/internal/domain"
	"github.com/servicenest/helpdesk/internal/repository"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

// DirectoryService manages organizations, teams, roles and memberships.
type DirectoryService struct {
	orgs  repository.OrganizationRepository
	teams repository.TeamRepository
	roles repository.RoleRepository
	users repository.UserRepository
	tx    repository.TxManager
}

// NewDirectoryService constructs the service.
func NewDirectoryService(
	orgs repository.OrganizationRepository,
	teams repository.TeamRepository,
	roles repository.RoleRepository,
	users repository.UserRepository,
	tx repository.TxManager,
) *DirectoryService {
	return &DirectoryService{orgs: orgs, teams: teams, roles: roles, users: users, tx: tx}
}

// OrganizationInput describes a new tenant.
type OrganizationInput struct {
	Name               string
	Domain             string
	City               string
	Country            string
	PrimaryContactName string
	PrimaryContact     string
}

// CreateOrganization registers a tenant.
func (s *DirectoryService) CreateOrganization(ctx context.Context, input OrganizationInput) (*domain.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("organization name is required", nil)
	}
	org := &domain.Organization{
		ID:                 newID("ORG"),
		Name:               name,
		Domain:             strings.TrimSpace(input.Domain),
		City:               input.City,
		Country:            input.Country,
		PrimaryContactName: input.PrimaryContactName,
		PrimaryContact:     input.PrimaryContact,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// GetOrganization fetches a tenant by id.
func (s *DirectoryService) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// ListOrganizations returns all tenants.
func (s *DirectoryService) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return orgs, nil
}

// TeamInput describes a new team.
type TeamInput struct {
	OrganizationID string
	Title          string
	Description    string
	CreatedBy      string
}

// CreateTeam registers a team inside an organization.
func (s *DirectoryService) CreateTeam(ctx context.Context, input TeamInput) (*domain.Team, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.OrganizationID == "" {
		return nil, apperrors.NewValidationError("team title and organization are required", nil)
	}
	team := &domain.Team{
		ID:             newID("TEA"),
		OrganizationID: input.OrganizationID,
		Title:          title,
		Description:    input.Description,
		CreatedBy:      input.CreatedBy,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// ListTeams returns the organization's teams.
func (s *DirectoryService) ListTeams(ctx context.Context, orgID string) ([]domain.Team, error) {
	teams, err := s.teams.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// DeleteTeam removes a team and detaches its members in one unit of work.
func (s *DirectoryService) DeleteTeam(ctx context.Context, orgID, teamID string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		members, err := s.users.ListByTeam(ctx, orgID, teamID)
		if err != nil {
			return err
		}
		for _, member := range members {
			if err := s.users.UpdateTeam(ctx, member.ID, nil); err != nil {
				return err
			}
		}
		if err := s.teams.Delete(ctx, teamID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
			}
			return err
		}
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// AssignUserToTeam moves a user into a team.
func (s *DirectoryService) AssignUserToTeam(ctx context.Context, userID, teamID string) error {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
		}
		return apperrors.MapError(err)
	}
	if err := s.users.UpdateTeam(ctx, userID, &teamID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// RoleInput describes a new role label.
type RoleInput struct {
	OrganizationID string
	Title          string
	Description    string
	CreatedBy      string
}

// CreateRole registers a role. Titles are unique per organization; a
// duplicate surfaces as a conflict.
func (s *DirectoryService) CreateRole(ctx context.Context, input RoleInput) (*domain.Role, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.OrganizationID == "" {
		return nil, apperrors.NewValidationError("role title and organization are required", nil)
	}
	role := &domain.Role{
		ID:             newID("ROL"),
		OrganizationID: input.OrganizationID,
		Title:          title,
		Description:    input.Description,
		CreatedBy:      input.CreatedBy,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, apperrors.MapError(err)
	}
	return role, nil
}

// ListRoles returns the organization's roles.
func (s *DirectoryService) ListRoles(ctx context.Context, orgID string) ([]domain.Role, error) {
	roles, err := s.roles.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return roles, nil
}

// DeleteRole removes a role label.
func (s *DirectoryService) DeleteRole(ctx context.Context, roleID string) error {
	if err := s.roles.Delete(ctx, roleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("role", map[string]any{"role_id": roleID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// AssignRole attaches a role to a user. Repeated assignment surfaces as a
// conflict via the unique pair constraint.
func (s *DirectoryService) AssignRole(ctx context.Context, userID, roleID string) error {
	if userID == "" || roleID == "" {
		return apperrors.NewValidationError("user id and role id are required", nil)
	}
	if err := s.roles.Assign(ctx, userID, roleID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListOrganizationUsers returns the organization's members.
func (s *DirectoryService) ListOrganizationUsers(ctx context.Context, orgID string) ([]domain.User, error) {
	users, err := s.users.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListTeamUsers returns a team's members.
func (s *DirectoryService) ListTeamUsers(ctx context.Context, orgID, teamID string) ([]domain.User, error) {
	users, err := s.users.ListByTeam(ctx, orgID, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}
