package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/servicenest/helpdesk/internal/api/dto"
	"github.com/servicenest/helpdesk/internal/auth"
	"github.com/servicenest/helpdesk/internal/domain"
	"github.com/servicenest/helpdesk/internal/repository"
	"github.com/servicenest/helpdesk/internal/service"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets  *service.TicketService
	watchers *service.WatcherService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, watchers *service.WatcherService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, watchers: watchers}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		Type:           req.Type,
		CreatedBy:      principal.User.ID,
		OrganizationID: orgID,
	}
	if req.Attachment != nil {
		input.Attachment = &service.AttachmentInput{
			FileURL:  req.Attachment.FileURL,
			FileName: req.Attachment.FileName,
		}
	}
	ticket, err := h.tickets.Create(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": bareTicketSummary(ticket)})
}

// GetTicket GET /tickets/:id returns the composite view.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	composite, err := h.tickets.GetComposite(c.Context(), c.Params("id"), principal.Capabilities)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(composite)})
}

// UpdateTicket PATCH /tickets/:id applies a partial field map.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !principal.Capabilities.CanEdit {
		return apperrors.NewForbidden("editing tickets requires an agent or admin role")
	}

	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	changes := make(map[string]string, len(body))
	for key, value := range body {
		if str, ok := value.(string); ok {
			changes[key] = str
		}
	}

	if err := h.tickets.Update(c.Context(), c.Params("id"), principal.User.ID, changes); err != nil {
		return err
	}
	composite, err := h.tickets.GetComposite(c.Context(), c.Params("id"), principal.Capabilities)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(composite)})
}

// MergeTickets POST /tickets/:id/merge.
func (h *TicketsHandler) MergeTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !principal.Capabilities.CanMerge {
		return apperrors.NewForbidden("merging tickets requires an agent or admin role")
	}
	var req dto.MergeTicketsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.tickets.Merge(c.Context(), c.Params("id"), req.MergedTicketIDs, principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"master_ticket_id":  c.Params("id"),
		"merged_ticket_ids": req.MergedTicketIDs,
	}})
}

// ListTickets GET /tickets lists the caller's organization tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	_, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	listings, err := h.tickets.ListByOrganization(c.Context(), orgID, parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(listings)})
}

// SearchTickets GET /tickets/search?q=.
func (h *TicketsHandler) SearchTickets(c *fiber.Ctx) error {
	_, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.Search(c.Context(), orgID, c.Query("q"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, bareTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListAssigned GET /tickets/assigned lists tickets assigned to the caller.
func (h *TicketsHandler) ListAssigned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	listings, err := h.tickets.ListAssigned(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(listings)})
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.tickets.ListHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponse(entries)})
}

// Dashboard GET /tickets/dashboard?days=30.
func (h *TicketsHandler) Dashboard(c *fiber.Ctx) error {
	_, orgID, err := requirePrincipalOrg(c)
	if err != nil {
		return err
	}
	days, _ := strconv.Atoi(c.Query("days", "30"))
	overview, err := h.tickets.DashboardOverview(c.Context(), orgID, days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}

// AddWatcher POST /tickets/:id/watchers.
func (h *TicketsHandler) AddWatcher(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.watchers.Add(c.Context(), c.Params("id"), principal.User.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveWatcher DELETE /tickets/:id/watchers.
func (h *TicketsHandler) RemoveWatcher(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.watchers.Remove(c.Context(), c.Params("id"), principal.User.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListWatchers GET /tickets/:id/watchers.
func (h *TicketsHandler) ListWatchers(c *fiber.Ctx) error {
	watchers, err := h.watchers.List(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.WatcherResponse, 0, len(watchers))
	for _, watcher := range watchers {
		items = append(items, dto.WatcherResponse{
			UserID:    watcher.UserID,
			Name:      watcher.Name,
			CreatedAt: watcher.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketSummaries(listings []repository.TicketListing) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(listings))
	for i := range listings {
		items = append(items, ticketSummary(&listings[i]))
	}
	return items
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.TicketStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := domain.TicketPriority(raw)
		filter.Priority = &priority
	}
	if raw := c.Query("type"); raw != "" {
		ticketType := domain.TicketType(raw)
		filter.Type = &ticketType
	}
	if raw := c.Query("assignee_id"); raw != "" {
		filter.AssigneeID = &raw
	}
	if raw := c.Query("search"); raw != "" {
		filter.Search = &raw
	}
	return filter
}

// requirePrincipalOrg resolves the caller and their organization scope.
func requirePrincipalOrg(c *fiber.Ctx) (*auth.Principal, string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, "", apperrors.NewUnauthorized("authentication required")
	}
	if principal.User.OrganizationID == nil || *principal.User.OrganizationID == "" {
		return nil, "", apperrors.NewValidationError("caller has no organization", nil)
	}
	return principal, *principal.User.OrganizationID, nil
}
