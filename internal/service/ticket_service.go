package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/servicenest/helpdesk/internal/auth"
	"github.com/servicenest/helpdesk/internal/config"
	"github.com/servicenest/helpdesk/internal/domain"
	"github.com/servicenest/helpdesk/internal/events"
	"github.com/servicenest/helpdesk/internal/repository"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

// updatableFields lists the ticket columns a partial update may touch.
// Anything else in the change map is silently ignored.
var updatableFields = []string{
	domain.FieldStatus,
	domain.FieldPriority,
	domain.FieldType,
	domain.FieldAssigneeID,
	domain.FieldAssignedTeam,
}

// TicketService coordinates the ticket lifecycle: creation, audited field
// updates, merging and the composite read view.
type TicketService struct {
	tickets     repository.TicketRepository
	history     repository.TicketHistoryRepository
	merges      repository.MergeRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	tx          repository.TxManager
	dispatcher  events.Dispatcher
	cache       *DashboardCache
	cfg         config.TicketsConfig
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	HistoryRepo    repository.TicketHistoryRepository
	MergeRepo      repository.MergeRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	TxManager      repository.TxManager
	Dispatcher     events.Dispatcher
	Cache          *DashboardCache
}

// NewTicketService constructs the service.
func NewTicketService(cfg config.TicketsConfig, deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		history:     deps.HistoryRepo,
		merges:      deps.MergeRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		tx:          deps.TxManager,
		dispatcher:  deps.Dispatcher,
		cache:       deps.Cache,
		cfg:         cfg,
	}
}

// AttachmentInput references a file already handed to the storage
// collaborator.
type AttachmentInput struct {
	FileURL  string
	FileName string
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title          string
	Description    string
	Priority       domain.TicketPriority
	Type           domain.TicketType
	CreatedBy      string
	OrganizationID string
	Attachment     *AttachmentInput
}

// CompositeTicket is the fully assembled read model of a ticket.
type CompositeTicket struct {
	repository.TicketListing
	Attachments    []domain.Attachment
	Comments       []domain.Comment
	IsMerged       bool
	MasterTicketID *string
	MergedTickets  []domain.MergedTicketSummary
	Editable       bool
}

// Create validates input, applies defaults and persists the ticket, plus an
// optional attachment, in one unit of work.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.CreatedBy == "" || input.OrganizationID == "" {
		return nil, apperrors.NewValidationError("title, created_by and organization_id are required", nil)
	}

	ticket := &domain.Ticket{
		ID:             newID("TCK"),
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TicketStatusOpen,
		Priority:       input.Priority,
		Type:           input.Type,
		CreatedBy:      input.CreatedBy,
		OrganizationID: input.OrganizationID,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.Type == "" {
		ticket.Type = domain.TicketTypeSupport
	}
	if !domain.ValidPriority(ticket.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": ticket.Priority})
	}
	if !domain.ValidType(ticket.Type) {
		return nil, apperrors.NewValidationError("unknown type", map[string]any{"type": ticket.Type})
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		if input.Attachment != nil {
			return s.storeAttachment(ctx, ticket.ID, nil, input.CreatedBy, *input.Attachment)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.cache.Invalidate(ctx, ticket.OrganizationID)
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  input.CreatedBy,
		Payload: events.TicketCreatedPayload{
			OrganizationID: ticket.OrganizationID,
			Title:          ticket.Title,
			Priority:       ticket.Priority,
			Type:           ticket.Type,
		},
	})
	return ticket, nil
}

// Update applies a partial field map to a ticket inside one transaction,
// appending one history entry per field whose value actually changed.
// Unknown keys are ignored; merged tickets are locked from edits.
func (s *TicketService) Update(ctx context.Context, ticketID, actorID string, changes map[string]string) error {
	if ticketID == "" || actorID == "" {
		return apperrors.NewValidationError("ticket id and actor are required", nil)
	}

	filtered := make(map[string]string, len(changes))
	for _, field := range updatableFields {
		if value, ok := changes[field]; ok {
			filtered[field] = value
		}
	}
	if len(filtered) == 0 {
		return apperrors.NewValidationError("no valid fields to update", nil)
	}
	if err := validateFieldValues(filtered); err != nil {
		return err
	}

	var changed []events.FieldChange
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Exclusive row lock for the duration of the transaction so
		// concurrent updates serialize instead of losing writes.
		current, err := s.tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}

		if master, err := s.merges.MasterOf(ctx, ticketID); err != nil {
			return err
		} else if master != nil {
			return apperrors.NewConflict("ticket is merged and cannot be edited", map[string]any{
				"master_ticket_id": *master,
			})
		}

		columns := make(map[string]any, len(filtered))
		entries := make([]domain.TicketHistory, 0, len(filtered))
		for field, value := range filtered {
			oldValue := currentFieldValue(current, field)
			columns[field] = columnValue(field, value)
			if oldValue == nil && value == "" {
				continue
			}
			if oldValue != nil && *oldValue == value {
				continue
			}
			newValue := value
			entries = append(entries, domain.TicketHistory{
				TicketID:  ticketID,
				FieldName: field,
				OldValue:  oldValue,
				NewValue:  &newValue,
				UpdatedBy: actorID,
			})
		}

		rows, err := s.tickets.UpdateFields(ctx, ticketID, columns)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperrors.NewPersistenceError("ticket update affected no rows", nil)
		}

		if len(entries) > 0 {
			if err := s.history.CreateBatch(ctx, entries); err != nil {
				return err
			}
		}
		for _, entry := range entries {
			changed = append(changed, events.FieldChange{
				Field:    entry.FieldName,
				OldValue: entry.OldValue,
				NewValue: entry.NewValue,
			})
		}
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	if len(changed) > 0 {
		if ticket, err := s.tickets.GetByID(ctx, ticketID); err == nil {
			s.cache.Invalidate(ctx, ticket.OrganizationID)
		}
		publish(ctx, s.dispatcher, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: ticketID,
			ActorID:  actorID,
			Payload:  events.TicketUpdatedPayload{Changes: changed},
		})
	}
	return nil
}

// Merge absorbs every ticket in mergedIDs into the master, all-or-nothing.
// Cyclic and repeated merges are rejected: the master must not itself be a
// merged member, and a merged ticket must not already carry links.
func (s *TicketService) Merge(ctx context.Context, masterID string, mergedIDs []string, actorID string) error {
	if masterID == "" || len(mergedIDs) == 0 || actorID == "" {
		return apperrors.NewValidationError("master_ticket_id, merged_ticket_ids and merged_by are required", nil)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		master, err := s.tickets.GetByID(ctx, masterID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": masterID})
			}
			return err
		}
		if parent, err := s.merges.MasterOf(ctx, masterID); err != nil {
			return err
		} else if parent != nil {
			return apperrors.NewConflict("master ticket is itself merged", map[string]any{
				"master_ticket_id": *parent,
			})
		}

		for _, mergedID := range mergedIDs {
			if mergedID == masterID {
				return apperrors.NewValidationError("a ticket cannot be merged into itself", map[string]any{
					"ticket_id": mergedID,
				})
			}
			if _, err := s.tickets.GetByID(ctx, mergedID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": mergedID})
				}
				return err
			}
			linked, err := s.merges.HasLinks(ctx, mergedID)
			if err != nil {
				return err
			}
			if linked {
				return apperrors.NewConflict("ticket already participates in a merge", map[string]any{
					"ticket_id": mergedID,
				})
			}
			link := &domain.MergeLink{
				MasterTicketID: master.ID,
				MergedTicketID: mergedID,
				MergedBy:       actorID,
			}
			if err := s.merges.CreateLink(ctx, link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	if ticket, err := s.tickets.GetByID(ctx, masterID); err == nil {
		s.cache.Invalidate(ctx, ticket.OrganizationID)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketsMerged,
		TicketID: masterID,
		ActorID:  actorID,
		Payload:  events.TicketsMergedPayload{MergedTicketIDs: mergedIDs},
	})
	return nil
}

// GetComposite assembles the full read view of a ticket: base fields and
// display names, direct attachments, the comment thread with per-comment
// attachments, and merge status. Read-only and side-effect free.
func (s *TicketService) GetComposite(ctx context.Context, ticketID string, caps auth.Capabilities) (*CompositeTicket, error) {
	listing, err := s.tickets.GetListing(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	composite := &CompositeTicket{TicketListing: *listing}

	master, err := s.merges.MasterOf(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if master != nil {
		composite.IsMerged = true
		composite.MasterTicketID = master
		composite.Editable = false
	} else {
		composite.Editable = true
		merged, err := s.merges.ListMerged(ctx, ticketID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		composite.MergedTickets = merged
	}

	attachments, err := s.attachments.ListDirect(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	composite.Attachments = attachments

	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byComment, err := s.attachments.ListByComments(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range comments {
		if comments[i].IsInternal && !caps.CanViewInternal {
			continue
		}
		comments[i].Attachments = byComment[comments[i].ID]
		composite.Comments = append(composite.Comments, comments[i])
	}

	return composite, nil
}

// ListHistory returns the audit trail for a ticket, newest first.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// ListByOrganization returns filtered, paginated org tickets.
func (s *TicketService) ListByOrganization(ctx context.Context, orgID string, filter repository.TicketFilter) ([]repository.TicketListing, error) {
	listings, err := s.tickets.ListByOrganization(ctx, orgID, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return listings, nil
}

// Search matches id, title or description within an organization.
func (s *TicketService) Search(ctx context.Context, orgID, term string) ([]domain.Ticket, error) {
	if strings.TrimSpace(term) == "" {
		return nil, apperrors.NewValidationError("search query is required", nil)
	}
	tickets, err := s.tickets.Search(ctx, orgID, term)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAssigned returns tickets assigned to the given user.
func (s *TicketService) ListAssigned(ctx context.Context, userID string) ([]repository.TicketListing, error) {
	listings, err := s.tickets.ListAssigned(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return listings, nil
}

// DashboardOverview returns cached org statistics over a trailing window of
// rangeDays days.
func (s *TicketService) DashboardOverview(ctx context.Context, orgID string, rangeDays int) (*domain.DashboardOverview, error) {
	if rangeDays <= 0 {
		rangeDays = 30
	}
	if overview, ok := s.cache.Get(ctx, orgID, rangeDays); ok {
		return overview, nil
	}
	since := time.Now().AddDate(0, 0, -rangeDays)
	overview, err := s.tickets.Overview(ctx, orgID, since, rangeDays)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Set(ctx, orgID, rangeDays, overview)
	return overview, nil
}

// storeAttachment persists the attachment row and, when configured, a
// system comment announcing the upload.
func (s *TicketService) storeAttachment(ctx context.Context, ticketID string, commentID *string, uploadedBy string, input AttachmentInput) error {
	attachment := &domain.Attachment{
		TicketID:   ticketID,
		CommentID:  commentID,
		FileURL:    input.FileURL,
		FileName:   input.FileName,
		UploadedBy: uploadedBy,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return err
	}
	if !s.cfg.AnnounceAttachments {
		return nil
	}
	announcement := &domain.Comment{
		ID:       newID("CMT"),
		TicketID: ticketID,
		UserID:   uploadedBy,
		Message:  fmt.Sprintf("Attachment added: %s", input.FileName),
		System:   true,
	}
	return s.comments.Create(ctx, announcement)
}

// currentFieldValue stringifies the current value of an updatable field,
// nil when unset.
func currentFieldValue(ticket *domain.Ticket, field string) *string {
	switch field {
	case domain.FieldStatus:
		value := string(ticket.Status)
		return &value
	case domain.FieldPriority:
		value := string(ticket.Priority)
		return &value
	case domain.FieldType:
		value := string(ticket.Type)
		return &value
	case domain.FieldAssigneeID:
		return ticket.AssigneeID
	case domain.FieldAssignedTeam:
		return ticket.AssignedTeam
	}
	return nil
}

// columnValue converts the incoming string to the stored column value.
func columnValue(field, value string) any {
	switch field {
	case domain.FieldAssigneeID, domain.FieldAssignedTeam:
		if value == "" {
			return nil
		}
	}
	return value
}

func validateFieldValues(fields map[string]string) error {
	if value, ok := fields[domain.FieldStatus]; ok && !domain.ValidStatus(domain.TicketStatus(value)) {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": value})
	}
	if value, ok := fields[domain.FieldPriority]; ok && !domain.ValidPriority(domain.TicketPriority(value)) {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": value})
	}
	if value, ok := fields[domain.FieldType]; ok && !domain.ValidType(domain.TicketType(value)) {
		return apperrors.NewValidationError("unknown type", map[string]any{"type": value})
	}
	return nil
}
