package domain

import "time"

// Organization is the tenant boundary; every ticket is scoped to one.
type Organization struct {
	ID                 string
	Name               string
	Domain             string
	City               string
	Country            string
	PrimaryContactName string
	PrimaryContact     string
	CreatedAt          time.Time
}
