package domain

import "time"

// Updatable ticket field names as recorded in history entries.
const (
	FieldStatus       = "status"
	FieldPriority     = "priority"
	FieldType         = "type"
	FieldAssigneeID   = "assignee_id"
	FieldAssignedTeam = "assigned_team"
)

// TicketHistory is one immutable audit entry: a single field of a single
// ticket changing from OldValue to NewValue. Entries are only written when
// the stringified values actually differ, and are never edited or deleted.
type TicketHistory struct {
	ID            int64
	TicketID      string
	FieldName     string
	OldValue      *string
	NewValue      *string
	UpdatedBy     string
	UpdatedByName string
	CreatedAt     time.Time
}
