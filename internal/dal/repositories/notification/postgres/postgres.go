package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopfront/orders/internal/dal/postgres"
	"github.com/shopfront/orders/internal/service/models/notification"
)

// NotificationRepository persists admin notifications.
type NotificationRepository struct {
	conn postgres.GenericConn
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(conn postgres.GenericConn) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Save inserts a notification. A redelivered notification with a known id is ignored.
func (r *NotificationRepository) Save(ctx context.Context, n notification.Notification) error {
	query, args, err := sq.Insert("notifications").
		Columns("id", "title", "message", "type", "link", "created_at").
		Values(n.ID, n.Title, n.Message, n.Type, n.Link, n.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}
