package dto

import (
	"time"

	"github.com/servicenest/helpdesk/internal/domain"
)

// AttachmentPayload references an already uploaded file.
type AttachmentPayload struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Type        domain.TicketType     `json:"type"`
	Attachment  *AttachmentPayload    `json:"attachment"`
}

// MergeTicketsRequest payload.
type MergeTicketsRequest struct {
	MergedTicketIDs []string `json:"merged_ticket_ids"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	Type           domain.TicketType     `json:"type"`
	CreatedBy      string                `json:"created_by"`
	CreatedByName  string                `json:"created_by_name,omitempty"`
	AssigneeID     *string               `json:"assignee_id"`
	AssigneeName   *string               `json:"assignee_name,omitempty"`
	AssignedTeam   *string               `json:"assigned_team"`
	TeamName       *string               `json:"team_name,omitempty"`
	OrganizationID string                `json:"organization_id"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// MergedTicketResponse is one absorbed ticket inside a master's detail.
type MergedTicketResponse struct {
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	Status   domain.TicketStatus   `json:"status"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketDetailResponse provides the composite ticket view.
type TicketDetailResponse struct {
	TicketSummary
	Description    string                 `json:"description"`
	Attachments    []AttachmentResponse   `json:"attachments"`
	Comments       []CommentResponse      `json:"comments"`
	IsMerged       bool                   `json:"is_merged"`
	MasterTicketID *string                `json:"master_ticket_id"`
	MergedTickets  []MergedTicketResponse `json:"merged_tickets"`
	Editable       bool                   `json:"editable"`
}

// HistoryEntryResponse is one audit trail row.
type HistoryEntryResponse struct {
	ID            int64     `json:"id"`
	Field         string    `json:"field"`
	OldValue      *string   `json:"old_value"`
	NewValue      *string   `json:"new_value"`
	UpdatedBy     string    `json:"updated_by"`
	UpdatedByName string    `json:"updated_by_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// WatcherResponse is one subscription row.
type WatcherResponse struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
