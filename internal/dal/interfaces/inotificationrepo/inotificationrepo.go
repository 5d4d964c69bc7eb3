package inotificationrepo

import (
	"context"

	"github.com/shopfront/orders/internal/service/models/notification"
)

// INotificationRepository persists admin notifications.
type INotificationRepository interface {
	Save(ctx context.Context, n notification.Notification) error
}
