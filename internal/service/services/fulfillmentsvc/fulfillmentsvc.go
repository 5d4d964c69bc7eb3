package fulfillmentsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/dal/interfaces/iorderitemrepo"
	"github.com/shopfront/orders/internal/dal/interfaces/iorderrepo"
	"github.com/shopfront/orders/internal/dal/postgres"
	orderrepo "github.com/shopfront/orders/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/shopfront/orders/internal/dal/repositories/orderitem/postgres"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/actor"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/service/models/orderitem"
	"github.com/shopfront/orders/internal/service/tracking"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// FailedItem is one order of a batch that could not be updated.
type FailedItem struct {
	ID    uuid.UUID   `json:"id"`
	Code  apperr.Code `json:"code,omitempty"`
	Error string      `json:"error"`
}

// BulkResult reports the per order outcome of a batch.
type BulkResult struct {
	Succeeded []uuid.UUID  `json:"succeeded"`
	Failed    []FailedItem `json:"failed"`
}

// FulfillmentService hands orders to couriers.
type FulfillmentService struct {
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	newTrackingID tracking.Generator
	now           func() time.Time
}

// option is a function that configures the FulfillmentService.
type option func(*FulfillmentService)

// MustNewFulfillmentService creates a new FulfillmentService.
func MustNewFulfillmentService(opts ...option) *FulfillmentService {
	s := &FulfillmentService{
		newTrackingID: tracking.NewID,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.orderRepo == nil {
		panic("fulfillmentsvc: order repository is required")
	}
	if s.orderItemRepo == nil {
		panic("fulfillmentsvc: order item repository is required")
	}

	return s
}

// WithPostgresClient sets the order store of the FulfillmentService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *FulfillmentService) {
		s.orderRepo = orderrepo.NewPostgresOrderRepository(pgClient.DB())
		s.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(pgClient.DB())
	}
}

// WithOrderRepository sets the order store of the FulfillmentService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *FulfillmentService) {
		s.orderRepo = repo
	}
}

// WithOrderItemRepository sets the order item store of the FulfillmentService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderItemRepository(repo iorderitemrepo.IOrderItemRepository) option {
	return func(s *FulfillmentService) {
		s.orderItemRepo = repo
	}
}

// WithTrackingIDGenerator overrides tracking id generation.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTrackingIDGenerator(gen tracking.Generator) option {
	return func(s *FulfillmentService) {
		s.newTrackingID = gen
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *FulfillmentService) {
		s.now = now
	}
}

// AssignCourier ships a pending or confirmed order, or reassigns the courier of a shipped one.
// An empty tracking id is generated.
func (s *FulfillmentService) AssignCourier(
	ctx context.Context,
	by actor.Actor,
	id uuid.UUID,
	courierName string,
	trackingID string,
	version int64,
) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "FulfillmentService.AssignCourier")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id.String()))

	if version < 1 {
		return order.Order{}, apperr.New(apperr.CodeValidationFailed, "version is required")
	}
	if courierName == "" {
		return order.Order{}, apperr.New(apperr.CodeValidationFailed, "courier name is required")
	}
	if !by.Known() {
		slog.Warn("Courier assigned without a known actor", "order_id", id)
	}

	o, err := s.orderRepo.Get(ctx, id)
	if err != nil {
		return order.Order{}, apperr.Downstream(err, "failed to get order")
	}
	if o.Version != version {
		return order.Order{}, apperr.Newf(apperr.CodeConflict,
			"order %s is at version %d, request was made against %d", id, o.Version, version)
	}

	shipped, err := s.ship(ctx, o, courierName, trackingID, by)
	if err != nil {
		return order.Order{}, err
	}

	slog.Info("Courier assigned", "order_id", id, "courier", courierName, "tracking_id", shipped.TrackingID, "by", by)

	items, err := s.orderItemRepo.Query(ctx, &orderitem.QueryOrderItemsModel{OrderIds: []uuid.UUID{id}})
	if err != nil {
		slog.Warn("Failed to reload items after courier assignment", "order_id", id, "error", err)
	}
	if items == nil {
		items = []orderitem.OrderItem{}
	}
	shipped.Items = items

	return shipped, nil
}

// ship applies the ship transition to o and writes it against the version that was read.
func (s *FulfillmentService) ship(
	ctx context.Context,
	o order.Order,
	courierName string,
	trackingID string,
	by actor.Actor,
) (order.Order, error) {
	now := s.now()
	var result order.Order

	err := tracking.Assign(trackingID, s.newTrackingID, func(trk string) error {
		next := o
		if err := next.Ship(courierName, trk, by, now); err != nil {
			return err
		}
		if err := s.orderRepo.Update(ctx, next, o.Version); err != nil {
			return err
		}
		next.Version = o.Version + 1
		result = next

		return nil
	})
	if err != nil {
		return order.Order{}, apperr.Downstream(err, "failed to update order")
	}

	return result, nil
}

// BulkAssignCourier ships every listed order independently. There is no rollback: orders
// that succeeded stay shipped when others fail. Any failure also yields PartialBatchFailure.
func (s *FulfillmentService) BulkAssignCourier(
	ctx context.Context,
	by actor.Actor,
	ids []uuid.UUID,
	courierName string,
) (BulkResult, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "FulfillmentService.BulkAssignCourier")
	defer span.End()

	if courierName == "" {
		return BulkResult{}, apperr.New(apperr.CodeValidationFailed, "courier name is required")
	}

	unique := dedupe(ids)
	if len(unique) == 0 {
		return BulkResult{}, apperr.New(apperr.CodeValidationFailed, "at least one order id is required")
	}
	span.SetAttributes(attribute.Int("batch.size", len(unique)))

	if !by.Known() {
		slog.Warn("Bulk courier assignment without a known actor", "orders", len(unique))
	}

	result := BulkResult{
		Succeeded: []uuid.UUID{},
		Failed:    []FailedItem{},
	}

	for _, id := range unique {
		if err := s.shipOne(ctx, by, id, courierName); err != nil {
			slog.Warn("Failed to assign courier in batch", "order_id", id, "error", err)
			result.Failed = append(result.Failed, FailedItem{
				ID:    id,
				Code:  apperr.CodeOf(err),
				Error: err.Error(),
			})

			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	slog.Info("Bulk courier assignment finished",
		"courier", courierName,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
		"by", by,
	)

	if len(result.Failed) > 0 {
		return result, apperr.Newf(apperr.CodePartialBatchFailure,
			"%d of %d orders could not be assigned", len(result.Failed), len(unique))
	}

	return result, nil
}

func (s *FulfillmentService) shipOne(ctx context.Context, by actor.Actor, id uuid.UUID, courierName string) error {
	o, err := s.orderRepo.Get(ctx, id)
	if err != nil {
		return apperr.Downstream(err, "failed to get order")
	}

	_, err = s.ship(ctx, o, courierName, "", by)

	return err
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
