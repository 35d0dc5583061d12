package domain

import "time"

// Watcher subscribes a user to a ticket's updates. The (ticket, user) pair
// is unique; membership carries no ordering semantics.
type Watcher struct {
	TicketID  string
	UserID    string
	Name      string
	CreatedAt time.Time
}
