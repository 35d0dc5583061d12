package handlers

import (
	"github.com/servicenest/helpdesk/internal/api/dto"
	"github.com/servicenest/helpdesk/internal/domain"
	"github.com/servicenest/helpdesk/internal/repository"
	"github.com/servicenest/helpdesk/internal/service"
)

func ticketSummary(listing *repository.TicketListing) dto.TicketSummary {
	ticket := listing.Ticket
	return dto.TicketSummary{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		Type:           ticket.Type,
		CreatedBy:      ticket.CreatedBy,
		CreatedByName:  listing.CreatedByName,
		AssigneeID:     ticket.AssigneeID,
		AssigneeName:   listing.AssigneeName,
		AssignedTeam:   ticket.AssignedTeam,
		TeamName:       listing.TeamName,
		OrganizationID: ticket.OrganizationID,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

func bareTicketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return ticketSummary(&repository.TicketListing{Ticket: *ticket})
}

func ticketDetail(composite *service.CompositeTicket) dto.TicketDetailResponse {
	detail := dto.TicketDetailResponse{
		TicketSummary:  ticketSummary(&composite.TicketListing),
		Description:    composite.Ticket.Description,
		Attachments:    attachmentResponses(composite.Attachments),
		Comments:       make([]dto.CommentResponse, 0, len(composite.Comments)),
		IsMerged:       composite.IsMerged,
		MasterTicketID: composite.MasterTicketID,
		MergedTickets:  make([]dto.MergedTicketResponse, 0, len(composite.MergedTickets)),
		Editable:       composite.Editable,
	}
	for i := range composite.Comments {
		detail.Comments = append(detail.Comments, commentResponse(&composite.Comments[i]))
	}
	for _, merged := range composite.MergedTickets {
		detail.MergedTickets = append(detail.MergedTickets, dto.MergedTicketResponse{
			ID:       merged.ID,
			Title:    merged.Title,
			Status:   merged.Status,
			Priority: merged.Priority,
		})
	}
	return detail
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:          comment.ID,
		TicketID:    comment.TicketID,
		UserID:      comment.UserID,
		AuthorName:  comment.AuthorName,
		Message:     comment.Message,
		IsInternal:  comment.IsInternal,
		IsSystem:    comment.System,
		CreatedAt:   comment.CreatedAt,
		Attachments: attachmentResponses(comment.Attachments),
	}
}

func attachmentResponses(attachments []domain.Attachment) []dto.AttachmentResponse {
	out := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		out = append(out, dto.AttachmentResponse{
			ID:         attachment.ID,
			FileURL:    attachment.FileURL,
			FileName:   attachment.FileName,
			UploadedBy: attachment.UploadedBy,
			CreatedAt:  attachment.CreatedAt,
		})
	}
	return out
}

func historyResponse(entries []domain.TicketHistory) []dto.HistoryEntryResponse {
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.HistoryEntryResponse{
			ID:            entry.ID,
			Field:         entry.FieldName,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			UpdatedBy:     entry.UpdatedBy,
			UpdatedByName: entry.UpdatedByName,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return out
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		Role:           user.Role,
		Contact:        user.Contact,
		OrganizationID: user.OrganizationID,
		TeamID:         user.TeamID,
		Status:         user.Status,
		CreatedAt:      user.CreatedAt,
	}
}
