package events

import (
	"time"

	"github.com/servicenest/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventTicketsMerged EventType = "tickets_merged"
	EventCommentAdded  EventType = "comment_added"
	EventWatcherAdded  EventType = "watcher_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	OrganizationID string                `json:"organization_id"`
	Title          string                `json:"title"`
	Priority       domain.TicketPriority `json:"priority"`
	Type           domain.TicketType     `json:"type"`
}

// FieldChange is one before/after pair inside an update event.
type FieldChange struct {
	Field    string  `json:"field"`
	OldValue *string `json:"old_value"`
	NewValue *string `json:"new_value"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Changes []FieldChange `json:"changes"`
}

// TicketsMergedPayload payload.
type TicketsMergedPayload struct {
	MergedTicketIDs []string `json:"merged_ticket_ids"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  string `json:"comment_id"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}

// WatcherAddedPayload payload.
type WatcherAddedPayload struct {
	UserID string `json:"user_id"`
}
