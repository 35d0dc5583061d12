package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/servicenest/helpdesk/internal/api/dto"
	"github.com/servicenest/helpdesk/internal/auth"
	"github.com/servicenest/helpdesk/internal/service"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

// CommentsHandler exposes the ticket conversation endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

// AddComment POST /tickets/:id/comments.
func (h *CommentsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IsInternal && !principal.Capabilities.CanViewInternal {
		return apperrors.NewForbidden("internal notes require an agent or admin role")
	}

	input := service.AddCommentInput{
		TicketID: c.Params("id"),
		AuthorID: principal.User.ID,
		Message:  req.Message,
		Internal: req.IsInternal,
	}
	if req.Attachment != nil {
		input.Attachment = &service.AttachmentInput{
			FileURL:  req.Attachment.FileURL,
			FileName: req.Attachment.FileName,
		}
	}
	comment, err := h.comments.Add(c.Context(), input)
	if err != nil {
		return err
	}
	response := commentResponse(comment)
	response.AuthorName = principal.User.DisplayName()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": response})
}

// ListComments GET /tickets/:id/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	comments, err := h.comments.ListByTicket(c.Context(), c.Params("id"), principal.Capabilities)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
