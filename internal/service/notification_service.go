package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/servicenest/helpdesk/internal/events"
	"github.com/servicenest/helpdesk/internal/repository"
	"github.com/servicenest/helpdesk/internal/worker"
)

// NotificationService turns domain events into notification jobs for every
// watcher of the affected ticket.
type NotificationService struct {
	watchers repository.WatcherRepository
	queue    *worker.NotificationWorker
	logger   *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(watchers repository.WatcherRepository, queue *worker.NotificationWorker, logger *zap.Logger) *NotificationService {
	return &NotificationService{watchers: watchers, queue: queue, logger: logger}
}

// Register subscribes the service to the events it fans out.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketUpdated, s.onTicketUpdated)
	dispatcher.Subscribe(events.EventTicketsMerged, s.onTicketsMerged)
	dispatcher.Subscribe(events.EventCommentAdded, s.onCommentAdded)
}

func (s *NotificationService) onTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("Ticket %s updated", event.TicketID)
	body := fmt.Sprintf("%d field(s) changed", len(payload.Changes))
	return s.fanOut(ctx, event, subject, body)
}

func (s *NotificationService) onTicketsMerged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketsMergedPayload)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("Ticket %s absorbed %d ticket(s)", event.TicketID, len(payload.MergedTicketIDs))
	return s.fanOut(ctx, event, subject, "Merged tickets are now read only")
}

func (s *NotificationService) onCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok || payload.IsInternal {
		return nil
	}
	subject := fmt.Sprintf("New comment on ticket %s", event.TicketID)
	return s.fanOut(ctx, event, subject, payload.Preview)
}

// fanOut enqueues one job per watcher, skipping the actor who caused the
// event.
func (s *NotificationService) fanOut(ctx context.Context, event events.Event, subject, body string) error {
	watchers, err := s.watchers.ListByTicket(ctx, event.TicketID)
	if err != nil {
		s.logger.Warn("watcher lookup failed, skipping notifications",
			zap.String("ticket_id", event.TicketID),
			zap.Error(err),
		)
		return nil
	}
	for _, watcher := range watchers {
		if watcher.UserID == event.ActorID {
			continue
		}
		s.queue.Enqueue(worker.Job{
			Recipient: watcher.UserID,
			Subject:   subject,
			Body:      body,
			TicketID:  event.TicketID,
		})
	}
	return nil
}
