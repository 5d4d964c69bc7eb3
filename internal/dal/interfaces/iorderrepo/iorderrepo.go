package iorderrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/order"
)

// IOrderRepository is an interface for the order repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) error
	// Get returns the order without items, or apperr.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	Count(ctx context.Context, filter *order.QueryOrdersModel) (int, error)
	// Update writes o if the stored version equals expectedVersion and bumps the version.
	// It returns apperr.ErrConflict on a version mismatch, apperr.ErrNotFound when the order
	// is gone and order.ErrDuplicateTrackingID when the tracking id is taken.
	Update(ctx context.Context, o order.Order, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	// CountStatusesByPhone counts orders per status sharing phoneKey, excluding excludeID.
	CountStatusesByPhone(ctx context.Context, phoneKey string, excludeID uuid.UUID) (map[order.Status]int, error)
}
