package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopfront/orders/internal/dal/postgres"
	"github.com/shopfront/orders/internal/service/models/outbox"
)

var outboxColumns = []string{
	"kind",
	"routing_key",
	"payload",
	"content_type",
	"attempts",
	"max_attempts",
	"last_error",
	"created_at",
	"updated_at",
	"next_attempt_at",
}

// OutboxRepository implements the outbox repository for PostgreSQL.
type OutboxRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
	now  func() time.Time
}

// NewOutboxRepository creates a new outbox repository.
func NewOutboxRepository(conn postgres.GenericConn) *OutboxRepository {
	return &OutboxRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  time.Now,
	}
}

func (r *OutboxRepository) Park(ctx context.Context, msg outbox.Message) error {
	query, args, err := r.sb.Insert("outbox").
		Columns(outboxColumns...).
		Values(
			msg.Kind,
			msg.RoutingKey,
			msg.Payload,
			msg.ContentType,
			msg.Attempts,
			msg.MaxAttempts,
			msg.LastError,
			msg.CreatedAt,
			msg.UpdatedAt,
			msg.NextAttemptAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err = r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to park %s message: %w", msg.Kind, err)
	}

	return nil
}

func (r *OutboxRepository) Due(ctx context.Context, kind string, limit int) ([]outbox.Message, error) {
	query, args, err := r.sb.Select(append([]string{"id"}, outboxColumns...)...).
		From("outbox").
		Where(sq.Eq{"kind": kind}).
		Where(sq.LtOrEq{"next_attempt_at": r.now()}).
		Where(sq.Expr("attempts < max_attempts")).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due %s messages: %w", kind, err)
	}
	defer rows.Close()

	var messages []outbox.Message
	for rows.Next() {
		var msg outbox.Message
		err := rows.Scan(
			&msg.ID,
			&msg.Kind,
			&msg.RoutingKey,
			&msg.Payload,
			&msg.ContentType,
			&msg.Attempts,
			&msg.MaxAttempts,
			&msg.LastError,
			&msg.CreatedAt,
			&msg.UpdatedAt,
			&msg.NextAttemptAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}

	return messages, nil
}

func (r *OutboxRepository) Delivered(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("outbox").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err = r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete outbox message: %w", err)
	}

	return nil
}

func (r *OutboxRepository) Reschedule(ctx context.Context, msg outbox.Message) error {
	query, args, err := r.sb.Update("outbox").
		Set("attempts", msg.Attempts).
		Set("last_error", msg.LastError).
		Set("next_attempt_at", msg.NextAttemptAt).
		Set("updated_at", msg.UpdatedAt).
		Where(sq.Eq{"id": msg.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err = r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reschedule outbox message: %w", err)
	}

	return nil
}

func (r *OutboxRepository) PurgeExhausted(ctx context.Context, kind string, before time.Time) (int64, error) {
	query, args, err := r.sb.Delete("outbox").
		Where(sq.Eq{"kind": kind}).
		Where(sq.Expr("attempts >= max_attempts")).
		Where(sq.Lt{"updated_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build purge query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge exhausted %s messages: %w", kind, err)
	}

	return res.RowsAffected()
}
