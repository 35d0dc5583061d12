package dto

import (
	"time"

	"github.com/servicenest/helpdesk/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Email          string          `json:"email"`
	Password       string          `json:"password"`
	Contact        string          `json:"contact"`
	Role           domain.UserRole `json:"role"`
	OrganizationID *string         `json:"organization_id"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public account shape, never carrying the hash.
type UserResponse struct {
	ID             string            `json:"id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Email          string            `json:"email"`
	Role           domain.UserRole   `json:"role"`
	Contact        string            `json:"contact,omitempty"`
	OrganizationID *string           `json:"organization_id"`
	TeamID         *string           `json:"team_id"`
	Status         domain.UserStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
