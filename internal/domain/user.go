package domain

import "time"

// UserRole is the coarse role attached to a user account. Fine-grained
// per-organization roles live in the roles table.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleAgent UserRole = "agent"
	RoleUser  UserRole = "user"
)

// UserStatus represents account lifecycle states.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is anyone who can authenticate: requesters, agents and admins.
type User struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	PasswordHash   string
	Role           UserRole
	Contact        string
	OrganizationID *string
	TeamID         *string
	Status         UserStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayName joins first and last name the way list views render it.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
