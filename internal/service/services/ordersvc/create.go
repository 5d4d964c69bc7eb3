package ordersvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/notification"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/service/models/orderitem"
	"github.com/shopfront/orders/internal/service/models/product"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// CreateOrder places a storefront order. Titles and prices are taken from the catalog and the
// total is computed here; the client total is never trusted.
func (s *OrderService) CreateOrder(ctx context.Context, model order.CreateModel) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := s.validate.Struct(model); err != nil {
		return order.Order{}, apperr.Wrap(apperr.CodeValidationFailed, err, "invalid order")
	}
	if model.Discount.IsNegative() {
		return order.Order{}, apperr.New(apperr.CodeValidationFailed, "discount must not be negative")
	}
	if model.DeliveryCharge.IsNegative() {
		return order.Order{}, apperr.New(apperr.CodeValidationFailed, "delivery charge must not be negative")
	}

	products, err := s.resolveProducts(ctx, productIDs(model.Items))
	if err != nil {
		return order.Order{}, err
	}

	now := s.now()
	o := order.Order{
		ID:             uuid.New(),
		CustomerName:   model.CustomerName,
		Address:        model.Address,
		Zone:           model.Zone,
		DeliveryCharge: model.DeliveryCharge,
		Discount:       model.Discount,
		Status:         order.StatusPending,
		OrderNote:      model.OrderNote,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	o.SetPhone(model.Phone)
	if rate, ok := s.deliveryRates[model.Zone]; ok {
		o.DeliveryCharge = rate
	}

	o.Items = make([]orderitem.OrderItem, 0, len(model.Items))
	for _, in := range model.Items {
		p := products[in.ProductID]
		o.Items = append(o.Items, orderitem.OrderItem{
			ID:           uuid.New(),
			OrderID:      o.ID,
			ProductID:    p.ID,
			ProductTitle: p.Title,
			UnitPrice:    p.Price,
			Quantity:     in.Quantity,
			CreatedAt:    now,
		})
	}
	o.RecalculateTotal()
	if o.TotalAmount.IsNegative() {
		return order.Order{}, apperr.New(apperr.CodeValidationFailed, "discount exceeds order value")
	}

	span.SetAttributes(attribute.String("order.id", o.ID.String()))

	if err := s.insert(ctx, o); err != nil {
		return order.Order{}, err
	}

	slog.Info("Order created", "order_id", o.ID, "total", o.TotalAmount.String(), "items", len(o.Items))

	s.emit(ctx, notification.Notification{
		Title:   "New order",
		Message: fmt.Sprintf("%s placed an order of %s", o.CustomerName, o.TotalAmount.StringFixed(2)),
		Type:    notification.TypeOrder,
		Link:    "/admin/orders/" + o.ID.String(),
	})

	if model.DraftID != nil {
		s.deleteDraft(ctx, *model.DraftID)
	}

	return o, nil
}

func (s *OrderService) insert(ctx context.Context, o order.Order) error {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return apperr.Downstream(err, "failed to start order transaction")
	}
	defer s.rollback(work)

	if err := work.OrderRepository().Insert(ctx, o); err != nil {
		return apperr.Downstream(err, "failed to store order")
	}
	if err := work.OrderItemRepository().BulkInsert(ctx, o.Items); err != nil {
		return apperr.Downstream(err, "failed to store order items")
	}

	if err := work.Commit(); err != nil {
		return apperr.Downstream(err, "failed to commit order")
	}

	return nil
}

func productIDs(items []order.ItemInput) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, in := range items {
		ids = append(ids, in.ProductID)
	}

	return ids
}

// resolveProducts loads every id from the catalog. Any missing product is NotFound.
func (s *OrderService) resolveProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]product.Product, error) {
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Downstream(err, "failed to load products")
	}

	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, apperr.Newf(apperr.CodeNotFound, "product %s not found", id)
		}
	}

	return products, nil
}
