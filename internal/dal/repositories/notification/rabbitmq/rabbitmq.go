package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/dal/interfaces/ioutboxrepo"
	"github.com/shopfront/orders/internal/service/models/notification"
	"github.com/shopfront/orders/internal/service/models/outbox"
)

const contentTypeJSON = "application/json"

// Publisher sends a message to the broker. *rabbitmq.Client satisfies it.
type Publisher interface {
	Publish(exchange, routingKey, contentType string, body []byte) error
}

// NotificationRabbitMQRepository publishes admin notifications and parks the ones
// the broker refused in the outbox for the outbox worker.
type NotificationRabbitMQRepository struct {
	publisher  Publisher
	outboxRepo ioutboxrepo.IOutboxRepository
	queue       string
	maxAttempts int
	now         func() time.Time
}

// NewNotificationRabbitMQRepository creates an emitter publishing to queue via the default exchange.
func NewNotificationRabbitMQRepository(
	publisher Publisher,
	outboxRepo ioutboxrepo.IOutboxRepository,
	queue string,
	maxAttempts int,
) *NotificationRabbitMQRepository {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	return &NotificationRabbitMQRepository{
		publisher:   publisher,
		outboxRepo:  outboxRepo,
		queue:       queue,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Emit publishes n. When the publish fails the message goes to the outbox; an error is
// returned only when neither worked.
func (r *NotificationRabbitMQRepository) Emit(ctx context.Context, n notification.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now()
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	pubErr := r.publisher.Publish("", r.queue, contentTypeJSON, body)
	if pubErr == nil {
		return nil
	}

	slog.Warn("Failed to publish notification, storing in outbox", "notification_id", n.ID, "error", pubErr)

	parked := outbox.Park(outbox.KindNotification, r.queue, contentTypeJSON, body, r.maxAttempts, pubErr, r.now())
	if err = r.outboxRepo.Park(ctx, parked); err != nil {
		return fmt.Errorf("failed to publish notification (%v) and to store it in outbox: %w", pubErr, err)
	}

	return nil
}
