package dto

import "time"

// CreateOrganizationRequest payload.
type CreateOrganizationRequest struct {
	Name               string `json:"name"`
	Domain             string `json:"domain"`
	City               string `json:"city"`
	Country            string `json:"country"`
	PrimaryContactName string `json:"primary_contact_name"`
	PrimaryContact     string `json:"primary_contact"`
}

// OrganizationResponse is one tenant.
type OrganizationResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Domain             string    `json:"domain,omitempty"`
	City               string    `json:"city,omitempty"`
	Country            string    `json:"country,omitempty"`
	PrimaryContactName string    `json:"primary_contact_name,omitempty"`
	PrimaryContact     string    `json:"primary_contact,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TeamResponse is one team.
type TeamResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	CreatedBy      string    `json:"created_by"`
	CreatedByName  string    `json:"created_by_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateRoleRequest payload.
type CreateRoleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RoleResponse is one role label.
type RoleResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// AssignRoleRequest payload.
type AssignRoleRequest struct {
	RoleID string `json:"role_id"`
}

// AssignTeamRequest payload.
type AssignTeamRequest struct {
	TeamID string `json:"team_id"`
}
