package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusRejected   TicketStatus = "rejected"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketType categorizes the nature of the request.
type TicketType string

const (
	TicketTypeBug     TicketType = "bug"
	TicketTypeFeature TicketType = "feature_request"
	TicketTypeSupport TicketType = "support"
)

// Ticket is the aggregate for support requests. CreatedBy and
// OrganizationID are immutable after creation.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	Type           TicketType
	CreatedBy      string
	AssigneeID     *string
	AssignedTeam   *string
	OrganizationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidStatus reports whether s is a known ticket status.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed, TicketStatusRejected:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// ValidType reports whether t is a known ticket type.
func ValidType(t TicketType) bool {
	switch t {
	case TicketTypeBug, TicketTypeFeature, TicketTypeSupport:
		return true
	}
	return false
}
