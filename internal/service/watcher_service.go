package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/servicenest/helpdesk/internal/domain"
	"github.com/servicenest/helpdesk/internal/events"
	"github.com/servicenest/helpdesk/internal/repository"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

// WatcherService manages ticket subscriptions.
type WatcherService struct {
	watchers   repository.WatcherRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// NewWatcherService constructs the service.
func NewWatcherService(watchers repository.WatcherRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher) *WatcherService {
	return &WatcherService{watchers: watchers, tickets: tickets, dispatcher: dispatcher}
}

// Add subscribes a user to a ticket. Re-adding an existing watcher is a
// no-op rather than an error.
func (s *WatcherService) Add(ctx context.Context, ticketID, userID string) error {
	if ticketID == "" || userID == "" {
		return apperrors.NewValidationError("ticket id and user id are required", nil)
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	inserted, err := s.watchers.Add(ctx, ticketID, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if inserted {
		publish(ctx, s.dispatcher, events.Event{
			Type:     events.EventWatcherAdded,
			TicketID: ticketID,
			ActorID:  userID,
			Payload:  events.WatcherAddedPayload{UserID: userID},
		})
	}
	return nil
}

// Remove unsubscribes a user from a ticket.
func (s *WatcherService) Remove(ctx context.Context, ticketID, userID string) error {
	removed, err := s.watchers.Remove(ctx, ticketID, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !removed {
		return apperrors.NewNotFound("watcher", map[string]any{
			"ticket_id": ticketID,
			"user_id":   userID,
		})
	}
	return nil
}

// List returns the ticket's watchers with display names.
func (s *WatcherService) List(ctx context.Context, ticketID string) ([]domain.Watcher, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	watchers, err := s.watchers.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return watchers, nil
}
