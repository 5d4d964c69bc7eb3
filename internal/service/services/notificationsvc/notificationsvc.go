package notificationsvc

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/shopfront/orders/internal/dal/interfaces/inotificationrepo"
	"github.com/shopfront/orders/internal/dal/postgres"
	notificationrepo "github.com/shopfront/orders/internal/dal/repositories/notification/postgres"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/notification"
	"go.opentelemetry.io/otel"
)

// NotificationService stores admin notifications delivered through the queue.
type NotificationService struct {
	notificationRepo inotificationrepo.INotificationRepository
	validate         *validator.Validate
}

// option is a function that configures the NotificationService.
type option func(*NotificationService)

// MustNewNotificationService creates a new NotificationService.
func MustNewNotificationService(opts ...option) *NotificationService {
	s := &NotificationService{
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.notificationRepo == nil {
		panic("notificationsvc: notification repository is required")
	}

	return s
}

// WithPostgresClient sets the notification store of the NotificationService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *NotificationService) {
		s.notificationRepo = notificationrepo.NewNotificationRepository(pgClient.DB())
	}
}

// WithNotificationRepository sets the notification store of the NotificationService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotificationRepository(repo inotificationrepo.INotificationRepository) option {
	return func(s *NotificationService) {
		s.notificationRepo = repo
	}
}

// ProcessNotification validates and persists a single notification. Redelivered messages
// with an already stored id are absorbed by the store.
func (s *NotificationService) ProcessNotification(ctx context.Context, n notification.Notification) error {
	ctx, span := otel.Tracer("service").Start(ctx, "NotificationService.ProcessNotification")
	defer span.End()

	if err := s.validate.Struct(n); err != nil {
		return apperr.Wrap(apperr.CodeValidationFailed, err, "invalid notification")
	}

	slog.Info("Processing notification", "notification_id", n.ID, "type", n.Type)

	if err := s.notificationRepo.Save(ctx, n); err != nil {
		slog.Error("Failed to save notification", "error", err)

		return apperr.Downstream(err, "failed to save notification")
	}

	slog.Info("Notification processed successfully", "notification_id", n.ID)

	return nil
}
