package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/servicenest/helpdesk/internal/events"
)

// publish stamps identity and time onto an event and hands it to the
// dispatcher. Dispatch failures never fail the calling operation.
func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
