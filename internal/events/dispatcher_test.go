package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherRoutesByType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var created, updated int
	dispatcher.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		created++
		return nil
	})
	dispatcher.Subscribe(EventTicketUpdated, func(ctx context.Context, event Event) error {
		updated++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}))

	assert.Equal(t, 2, created)
	assert.Zero(t, updated)
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var reached bool
	dispatcher.Subscribe(EventCommentAdded, func(ctx context.Context, event Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventCommentAdded, func(ctx context.Context, event Event) error {
		reached = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventCommentAdded}))
	assert.True(t, reached)
}
