package ordersvc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/actor"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/service/models/orderitem"
	"github.com/shopfront/orders/internal/service/models/product"
	"github.com/shopfront/orders/internal/service/tracking"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func warnUnattributed(by actor.Actor, id uuid.UUID, action string) {
	if !by.Known() {
		slog.Warn("Order changed without a known actor", "order_id", id, "action", action)
	}
}

// load reads the order and checks the caller saw its latest version.
func (s *OrderService) load(ctx context.Context, id uuid.UUID, version int64) (order.Order, error) {
	if version < 1 {
		return order.Order{}, apperr.New(apperr.CodeValidationFailed, "version is required")
	}

	o, err := s.orderRepo.Get(ctx, id)
	if err != nil {
		return order.Order{}, apperr.Downstream(err, "failed to get order")
	}
	if o.Version != version {
		return order.Order{}, apperr.Newf(apperr.CodeConflict,
			"order %s is at version %d, request was made against %d", id, o.Version, version)
	}

	return o, nil
}

// TransitionStatus applies a manual status change. Shipping goes through courier assignment.
func (s *OrderService) TransitionStatus(
	ctx context.Context,
	by actor.Actor,
	id uuid.UUID,
	next order.Status,
	version int64,
) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.TransitionStatus")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id.String()), attribute.String("order.status", next.String()))

	o, err := s.load(ctx, id, version)
	if err != nil {
		return order.Order{}, err
	}

	from := o.Status
	if err := o.TransitionTo(next, by, s.now()); err != nil {
		return order.Order{}, err
	}
	warnUnattributed(by, id, "transition")

	if err := s.orderRepo.Update(ctx, o, version); err != nil {
		return order.Order{}, apperr.Downstream(err, "failed to update order")
	}
	o.Version = version + 1

	slog.Info("Order status changed", "order_id", id, "from", from, "to", next, "by", by)

	withItems := []order.Order{o}
	if err := s.attachItems(ctx, withItems); err != nil {
		slog.Warn("Failed to reload items after transition", "order_id", id, "error", err)
	}

	return withItems[0], nil
}

// UpdateOrderFields applies a partial admin edit and recomputes the total. A courier name on a
// pending or confirmed order ships it, on a shipped order it reassigns the courier, and any
// other status rejects it.
func (s *OrderService) UpdateOrderFields(
	ctx context.Context,
	by actor.Actor,
	id uuid.UUID,
	model order.UpdateModel,
) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.UpdateOrderFields")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id.String()))

	if err := s.validate.Struct(model); err != nil {
		return order.Order{}, apperr.Wrap(apperr.CodeValidationFailed, err, "invalid order update")
	}

	base, err := s.load(ctx, id, model.Version)
	if err != nil {
		return order.Order{}, err
	}

	withItems := []order.Order{base}
	if err := s.attachItems(ctx, withItems); err != nil {
		return order.Order{}, err
	}
	base = withItems[0]

	now := s.now()
	if err := s.applyFields(ctx, &base, model); err != nil {
		return order.Order{}, err
	}
	base.Touch(by, now)
	warnUnattributed(by, id, "update")

	itemsChanged := model.Items != nil
	ship := model.CourierName != nil && base.Status.CanShip()

	var result order.Order
	write := func(trackingID string) error {
		o := base
		if ship {
			if err := o.Ship(*model.CourierName, trackingID, by, now); err != nil {
				return err
			}
		} else if trackingID != "" {
			o.TrackingID = trackingID
		}

		if err := s.persist(ctx, o, model.Version, itemsChanged); err != nil {
			return err
		}
		result = o

		return nil
	}

	supplied := ""
	if model.TrackingID != nil {
		supplied = *model.TrackingID
	}
	if ship {
		err = tracking.Assign(supplied, s.newTrackingID, write)
	} else if supplied != "" {
		err = tracking.Assign(supplied, nil, write)
	} else {
		err = write("")
	}
	if err != nil {
		return order.Order{}, apperr.Downstream(err, "failed to update order")
	}

	result.Version = model.Version + 1
	slog.Info("Order updated", "order_id", id, "by", by, "shipped", ship)

	return result, nil
}

func (s *OrderService) applyFields(ctx context.Context, o *order.Order, model order.UpdateModel) error {
	if model.CustomerName != nil {
		if *model.CustomerName == "" {
			return apperr.New(apperr.CodeValidationFailed, "customer name must not be empty")
		}
		o.CustomerName = *model.CustomerName
	}
	if model.Phone != nil {
		if *model.Phone == "" {
			return apperr.New(apperr.CodeValidationFailed, "phone must not be empty")
		}
		o.SetPhone(*model.Phone)
	}
	if model.Address != nil {
		if *model.Address == "" {
			return apperr.New(apperr.CodeValidationFailed, "address must not be empty")
		}
		o.Address = *model.Address
	}
	if model.Zone != nil {
		o.Zone = *model.Zone
	}
	if model.DeliveryCharge != nil {
		if model.DeliveryCharge.IsNegative() {
			return apperr.New(apperr.CodeValidationFailed, "delivery charge must not be negative")
		}
		o.DeliveryCharge = *model.DeliveryCharge
	}
	if model.Discount != nil {
		if model.Discount.IsNegative() {
			return apperr.New(apperr.CodeValidationFailed, "discount must not be negative")
		}
		o.Discount = *model.Discount
	}
	if model.CourierName != nil && !o.Status.CanShip() {
		if o.Status != order.StatusShipped {
			return apperr.Newf(apperr.CodeInvalidTransition, "cannot assign a courier to an order in status %s", o.Status)
		}
		if *model.CourierName == "" {
			return apperr.New(apperr.CodeValidationFailed, "courier name must not be empty")
		}
		o.CourierName = *model.CourierName
	}
	if model.AdminNote != nil {
		o.AdminNote = *model.AdminNote
	}
	if model.OrderNote != nil {
		o.OrderNote = *model.OrderNote
	}

	if model.Items != nil {
		items, err := s.patchItems(ctx, o, model.Items)
		if err != nil {
			return err
		}
		o.Items = items
	}

	o.RecalculateTotal()
	if o.TotalAmount.IsNegative() {
		return apperr.New(apperr.CodeValidationFailed, "discount exceeds order value")
	}

	return nil
}

// patchItems builds the new item list. Lines already on the order keep their snapshot unless a
// price is given; new products are snapshotted from the catalog.
func (s *OrderService) patchItems(ctx context.Context, o *order.Order, patches []order.ItemPatch) ([]orderitem.OrderItem, error) {
	existing := make(map[uuid.UUID]orderitem.OrderItem, len(o.Items))
	for _, item := range o.Items {
		existing[item.ProductID] = item
	}

	var missing []uuid.UUID
	for _, p := range patches {
		if _, ok := existing[p.ProductID]; !ok {
			missing = append(missing, p.ProductID)
		}
	}

	catalog := map[uuid.UUID]product.Product{}
	if len(missing) > 0 {
		var err error
		catalog, err = s.resolveProducts(ctx, missing)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	items := make([]orderitem.OrderItem, 0, len(patches))
	for _, p := range patches {
		item, ok := existing[p.ProductID]
		if !ok {
			prod := catalog[p.ProductID]
			item = orderitem.OrderItem{
				ProductID:    prod.ID,
				ProductTitle: prod.Title,
				UnitPrice:    prod.Price,
			}
		}
		if p.UnitPrice != nil {
			if p.UnitPrice.IsNegative() {
				return nil, apperr.New(apperr.CodeValidationFailed, "unit price must not be negative")
			}
			item.UnitPrice = *p.UnitPrice
		}
		item.ID = uuid.New()
		item.OrderID = o.ID
		item.Quantity = p.Quantity
		item.CreatedAt = now
		item.Product = nil
		items = append(items, item)
	}

	return items, nil
}

// persist writes the order, and its items when they changed, in one transaction.
func (s *OrderService) persist(ctx context.Context, o order.Order, version int64, itemsChanged bool) error {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return apperr.Downstream(err, "failed to start order transaction")
	}
	defer s.rollback(work)

	if err := work.OrderRepository().Update(ctx, o, version); err != nil {
		return err
	}

	if itemsChanged {
		if err := work.OrderItemRepository().DeleteByOrderID(ctx, o.ID); err != nil {
			return err
		}
		if err := work.OrderItemRepository().BulkInsert(ctx, o.Items); err != nil {
			return err
		}
	}

	return work.Commit()
}

// DeleteOrder removes an order and its items.
func (s *OrderService) DeleteOrder(ctx context.Context, by actor.Actor, id uuid.UUID) error {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.DeleteOrder")
	defer span.End()

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return apperr.Downstream(err, "failed to delete order")
	}

	slog.Info("Order deleted", "order_id", id, "by", by)

	return nil
}
