package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopfront/orders/internal/dal/interfaces/ioutboxrepo"
	"github.com/shopfront/orders/internal/service/models/outbox"
	"github.com/spf13/viper"
)

// Publisher republishes a parked message.
type Publisher interface {
	Publish(exchange, routingKey, contentType string, body []byte) error
}

// Worker republishes messages of one kind parked in the outbox table and purges the ones
// that ran out of attempts once they are older than the retention.
type Worker struct {
	outboxRepo   ioutboxrepo.IOutboxRepository
	publisher    Publisher
	kind         string
	pollInterval time.Duration
	batchSize    int
	retention    time.Duration
	now          func() time.Time
}

// NewWorker creates a new outbox worker for messages of kind.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	publisher Publisher,
	kind string,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	retentionHours := viper.GetInt("rabbitmq.outbox.retention_hours")
	if retentionHours == 0 {
		retentionHours = 72
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		publisher:    publisher,
		kind:         kind,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		retention:    time.Duration(retentionHours) * time.Hour,
		now:          time.Now,
	}
}

// Start polls the outbox until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started",
		"kind", w.kind,
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down", "kind", w.kind)

			return
		case <-ticker.C:
			w.ProcessMessages(ctx)
			w.Purge(ctx)
		}
	}
}

// ProcessMessages publishes one batch of due messages.
func (w *Worker) ProcessMessages(ctx context.Context) {
	messages, err := w.outboxRepo.Due(ctx, w.kind, w.batchSize)
	if err != nil {
		slog.Error("Failed to get due messages from outbox", "kind", w.kind, "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox messages", "kind", w.kind, "count", len(messages))

	for _, msg := range messages {
		w.deliver(ctx, msg)
	}
}

// Purge drops exhausted messages older than the retention.
func (w *Worker) Purge(ctx context.Context) {
	removed, err := w.outboxRepo.PurgeExhausted(ctx, w.kind, w.now().Add(-w.retention))
	if err != nil {
		slog.Error("Failed to purge exhausted outbox messages", "kind", w.kind, "error", err)

		return
	}
	if removed > 0 {
		slog.Warn("Purged undeliverable outbox messages", "kind", w.kind, "count", removed)
	}
}

func (w *Worker) deliver(ctx context.Context, msg outbox.Message) {
	err := w.publisher.Publish("", msg.RoutingKey, msg.ContentType, msg.Payload)
	if err == nil {
		if err := w.outboxRepo.Delivered(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from outbox after successful publish",
				"outbox_id", msg.ID,
				"error", err,
			)

			return
		}
		slog.Info("Message published and removed from outbox", "outbox_id", msg.ID, "kind", msg.Kind)

		return
	}

	next := msg.Retry(err, w.now())
	if next.Exhausted() {
		slog.Error("Outbox message exhausted its attempts",
			"outbox_id", msg.ID,
			"kind", msg.Kind,
			"attempts", next.Attempts,
			"error", err,
		)
	} else {
		slog.Warn("Failed to publish message from outbox, will retry",
			"outbox_id", msg.ID,
			"attempts", next.Attempts,
			"next_attempt", next.NextAttemptAt,
			"error", err,
		)
	}

	if err := w.outboxRepo.Reschedule(ctx, next); err != nil {
		slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}
