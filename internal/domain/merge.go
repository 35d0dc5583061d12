package domain

import "time"

// MergeLink records one ticket absorbed into a master ticket. A ticket that
// appears as MergedTicketID of any link is locked from direct edits.
type MergeLink struct {
	ID             int64
	MasterTicketID string
	MergedTicketID string
	MergedBy       string
	CreatedAt      time.Time
}

// MergedTicketSummary is the shape merged members take inside a master
// ticket's composite view.
type MergedTicketSummary struct {
	ID       string
	Title    string
	Status   TicketStatus
	Priority TicketPriority
}
