package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/servicenest/helpdesk/internal/api/dto"
	"github.com/servicenest/helpdesk/internal/domain"
	"github.com/servicenest/helpdesk/internal/service"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

// DirectoryHandler exposes organization, team and role management.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// CreateOrganization POST /organizations.
func (h *DirectoryHandler) CreateOrganization(c *fiber.Ctx) error {
	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	org, err := h.directory.CreateOrganization(c.Context(), service.OrganizationInput{
		Name:               req.Name,
		Domain:             req.Domain,
		City:               req.City,
		Country:            req.Country,
		PrimaryContactName: req.PrimaryContactName,
		PrimaryContact:     req.PrimaryContact,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": organizationResponse(org)})
}

// ListOrganizations GET /organizations.
func (h *DirectoryHandler) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := h.directory.ListOrganizations(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		items = append(items, organizationResponse(&orgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetOrganization GET /organizations/:id.
func (h *DirectoryHandler) GetOrganization(c *fiber.Ctx) error {
	org, err := h.directory.GetOrganization(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

// CreateTeam POST /teams.
func (h *DirectoryHandler) CreateTeam(c *fiber.Ctx) error {
	principal, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.directory.CreateTeam(c.Context(), service.TeamInput{
		OrganizationID: orgID,
		Title:          req.Title,
		Description:    req.Description,
		CreatedBy:      principal.User.ID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}

// ListTeams GET /teams.
func (h *DirectoryHandler) ListTeams(c *fiber.Ctx) error {
	_, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	teams, err := h.directory.ListTeams(c.Context(), orgID)
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteTeam DELETE /teams/:id.
func (h *DirectoryHandler) DeleteTeam(c *fiber.Ctx) error {
	_, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	if err := h.directory.DeleteTeam(c.Context(), orgID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTeamUsers GET /teams/:id/users.
func (h *DirectoryHandler) ListTeamUsers(c *fiber.Ctx) error {
	_, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	users, err := h.directory.ListTeamUsers(c.Context(), orgID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// AssignUserToTeam PUT /users/:id/team.
func (h *DirectoryHandler) AssignUserToTeam(c *fiber.Ctx) error {
	var req dto.AssignTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TeamID == "" {
		return apperrors.NewValidationError("team_id is required", nil)
	}
	if err := h.directory.AssignUserToTeam(c.Context(), c.Params("id"), req.TeamID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateRole POST /roles.
func (h *DirectoryHandler) CreateRole(c *fiber.Ctx) error {
	principal, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	var req dto.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	role, err := h.directory.CreateRole(c.Context(), service.RoleInput{
		OrganizationID: orgID,
		Title:          req.Title,
		Description:    req.Description,
		CreatedBy:      principal.User.ID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": roleResponse(role)})
}

// ListRoles GET /roles.
func (h *DirectoryHandler) ListRoles(c *fiber.Ctx) error {
	_, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	roles, err := h.directory.ListRoles(c.Context(), orgID)
	if err != nil {
		return err
	}
	items := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		items = append(items, roleResponse(&roles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteRole DELETE /roles/:id.
func (h *DirectoryHandler) DeleteRole(c *fiber.Ctx) error {
	if err := h.directory.DeleteRole(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignRole POST /users/:id/roles.
func (h *DirectoryHandler) AssignRole(c *fiber.Ctx) error {
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.directory.AssignRole(c.Context(), c.Params("id"), req.RoleID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListOrganizationUsers GET /users.
func (h *DirectoryHandler) ListOrganizationUsers(c *fiber.Ctx) error {
	_, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	users, err := h.directory.ListOrganizationUsers(c.Context(), orgID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

func organizationResponse(org *domain.Organization) dto.OrganizationResponse {
	return dto.OrganizationResponse{
		ID:                 org.ID,
		Name:               org.Name,
		Domain:             org.Domain,
		City:               org.City,
		Country:            org.Country,
		PrimaryContactName: org.PrimaryContactName,
		PrimaryContact:     org.PrimaryContact,
		CreatedAt:          org.CreatedAt,
	}
}

func teamResponse(team *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:             team.ID,
		OrganizationID: team.OrganizationID,
		Title:          team.Title,
		Description:    team.Description,
		CreatedBy:      team.CreatedBy,
		CreatedByName:  team.CreatedByName,
		CreatedAt:      team.CreatedAt,
	}
}

func roleResponse(role *domain.Role) dto.RoleResponse {
	return dto.RoleResponse{
		ID:             role.ID,
		OrganizationID: role.OrganizationID,
		Title:          role.Title,
		Description:    role.Description,
		CreatedBy:      role.CreatedBy,
		CreatedAt:      role.CreatedAt,
	}
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}
