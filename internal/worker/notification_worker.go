package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/servicenest/helpdesk/internal/config"
)

// Job is one pending notification delivery.
type Job struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	TicketID  string `json:"ticket_id"`
}

// NotificationWorker drains queued notification jobs on a background
// goroutine so deliveries never sit on the request path.
type NotificationWorker struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
	client *http.Client
	jobs   chan Job
	wg     sync.WaitGroup
	once   sync.Once
}

// NewNotificationWorker constructs a worker with a bounded queue.
func NewNotificationWorker(cfg config.NotificationConfig, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 128
	}
	return &NotificationWorker{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
		jobs:   make(chan Job, buffer),
	}
}

// Enqueue queues a job without blocking. A full queue drops the job,
// notifications are best effort.
func (w *NotificationWorker) Enqueue(job Job) bool {
	select {
	case w.jobs <- job:
		return true
	default:
		w.logger.Warn("notification queue full, dropping job",
			zap.String("ticket_id", job.TicketID),
			zap.String("recipient", job.Recipient),
		)
		return false
	}
}

// Start launches the drain loop. It returns immediately.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-w.jobs:
				if !ok {
					return
				}
				w.deliver(ctx, job)
			}
		}
	}()
}

// Stop closes the queue and waits for in-flight deliveries.
func (w *NotificationWorker) Stop() {
	w.once.Do(func() { close(w.jobs) })
	w.wg.Wait()
}

func (w *NotificationWorker) deliver(ctx context.Context, job Job) {
	// Email delivery is a stub: the outbound side is logged, not sent.
	w.logger.Info("notification email",
		zap.String("from", w.cfg.EmailFrom),
		zap.String("recipient", job.Recipient),
		zap.String("subject", job.Subject),
		zap.String("ticket_id", job.TicketID),
	)

	if w.cfg.WebhookURL == "" {
		return
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		w.logger.Warn("webhook request build failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Warn("webhook delivery failed", zap.String("ticket_id", job.TicketID), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		w.logger.Warn("webhook rejected", zap.Int("status", resp.StatusCode), zap.String("ticket_id", job.TicketID))
	}
}
