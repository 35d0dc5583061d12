package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/servicenest/helpdesk/internal/config"
)

func TestWorkerDrainsQueue(t *testing.T) {
	w := NewNotificationWorker(config.NotificationConfig{EmailFrom: "noreply@example.com"}, zap.NewNop(), 8)
	w.Start(context.Background())

	for i := 0; i < 5; i++ {
		assert.True(t, w.Enqueue(Job{Recipient: "USR-AAAA0001", Subject: "ping", TicketID: "TCK-AAAA0001"}))
	}
	w.Stop()
	assert.Empty(t, w.jobs)
}

func TestWorkerDropsWhenQueueFull(t *testing.T) {
	// Never started, so nothing drains the queue.
	w := NewNotificationWorker(config.NotificationConfig{}, zap.NewNop(), 1)

	assert.True(t, w.Enqueue(Job{TicketID: "TCK-AAAA0001"}))
	assert.False(t, w.Enqueue(Job{TicketID: "TCK-AAAA0002"}))
}
