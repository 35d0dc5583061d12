package domain

import "time"

// Role is an organization-defined label assignable to users. Titles are
// unique per organization.
type Role struct {
	ID             string
	OrganizationID string
	Title          string
	Description    string
	CreatedBy      string
	CreatedAt      time.Time
}
