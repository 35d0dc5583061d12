package domain

import "time"

// Team groups users within an organization; tickets may be assigned to one.
type Team struct {
	ID             string
	OrganizationID string
	Title          string
	Description    string
	CreatedBy      string
	CreatedByName  string
	CreatedAt      time.Time
}
