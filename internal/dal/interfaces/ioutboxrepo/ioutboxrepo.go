package ioutboxrepo

import (
	"context"
	"time"

	"github.com/shopfront/orders/internal/service/models/outbox"
)

// IOutboxRepository stores messages the broker refused until the outbox worker delivers them.
type IOutboxRepository interface {
	// Park stores a message after a failed publish.
	Park(ctx context.Context, msg outbox.Message) error

	// Due returns messages of kind whose next attempt is due and that still have attempts left,
	// oldest first.
	Due(ctx context.Context, kind string, limit int) ([]outbox.Message, error)

	// Delivered removes a message after a successful publish.
	Delivered(ctx context.Context, id int64) error

	// Reschedule persists the attempt bookkeeping of msg.
	Reschedule(ctx context.Context, msg outbox.Message) error

	// PurgeExhausted deletes messages of kind that ran out of attempts before the given time.
	PurgeExhausted(ctx context.Context, kind string, before time.Time) (int64, error)
}
