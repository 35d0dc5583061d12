package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/servicenest/helpdesk/internal/auth"
	"github.com/servicenest/helpdesk/internal/config"
	"github.com/servicenest/helpdesk/internal/domain"
	"github.com/servicenest/helpdesk/internal/events"
	"github.com/servicenest/helpdesk/internal/repository"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

const commentPreviewLength = 80

// CommentService manages the ticket conversation thread.
type CommentService struct {
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	tickets     repository.TicketRepository
	tx          repository.TxManager
	dispatcher  events.Dispatcher
	cfg         config.TicketsConfig
}

// NewCommentService constructs the service.
func NewCommentService(
	cfg config.TicketsConfig,
	comments repository.CommentRepository,
	attachments repository.AttachmentRepository,
	tickets repository.TicketRepository,
	tx repository.TxManager,
	dispatcher events.Dispatcher,
) *CommentService {
	return &CommentService{
		comments:    comments,
		attachments: attachments,
		tickets:     tickets,
		tx:          tx,
		dispatcher:  dispatcher,
		cfg:         cfg,
	}
}

// AddCommentInput describes a new comment.
type AddCommentInput struct {
	TicketID   string
	AuthorID   string
	Message    string
	Internal   bool
	Attachment *AttachmentInput
}

// Add appends a comment to a ticket thread. The comment, its optional
// attachment and the configured announcement land in one unit of work.
// Comments remain allowed on merged tickets so context keeps accruing.
func (s *CommentService) Add(ctx context.Context, input AddCommentInput) (*domain.Comment, error) {
	message := strings.TrimSpace(input.Message)
	if input.TicketID == "" || input.AuthorID == "" {
		return nil, apperrors.NewValidationError("ticket id and author are required", nil)
	}
	if message == "" {
		return nil, apperrors.NewValidationError("comment message is required", nil)
	}

	if _, err := s.tickets.GetByID(ctx, input.TicketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.TicketID})
		}
		return nil, apperrors.MapError(err)
	}

	comment := &domain.Comment{
		ID:         newID("CMT"),
		TicketID:   input.TicketID,
		UserID:     input.AuthorID,
		Message:    message,
		IsInternal: input.Internal,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		if input.Attachment == nil {
			return nil
		}
		attachment := &domain.Attachment{
			TicketID:   input.TicketID,
			CommentID:  &comment.ID,
			FileURL:    input.Attachment.FileURL,
			FileName:   input.Attachment.FileName,
			UploadedBy: input.AuthorID,
		}
		if err := s.attachments.Create(ctx, attachment); err != nil {
			return err
		}
		comment.Attachments = append(comment.Attachments, *attachment)
		if !s.cfg.AnnounceAttachments {
			return nil
		}
		announcement := &domain.Comment{
			ID:       newID("CMT"),
			TicketID: input.TicketID,
			UserID:   input.AuthorID,
			Message:  "Attachment added: " + input.Attachment.FileName,
			System:   true,
		}
		return s.comments.Create(ctx, announcement)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: input.TicketID,
		ActorID:  input.AuthorID,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
			Preview:    preview(message),
		},
	})
	return comment, nil
}

// ListByTicket returns the thread newest first, hiding internal notes from
// callers without the capability.
func (s *CommentService) ListByTicket(ctx context.Context, ticketID string, caps auth.Capabilities) ([]domain.Comment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byComment, err := s.attachments.ListByComments(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	visible := make([]domain.Comment, 0, len(comments))
	for i := range comments {
		if comments[i].IsInternal && !caps.CanViewInternal {
			continue
		}
		comments[i].Attachments = byComment[comments[i].ID]
		visible = append(visible, comments[i])
	}
	return visible, nil
}

func preview(message string) string {
	if len(message) <= commentPreviewLength {
		return message
	}
	return message[:commentPreviewLength]
}
