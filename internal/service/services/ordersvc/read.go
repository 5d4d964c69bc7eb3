package ordersvc

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/service/models/orderitem"
	"github.com/shopfront/orders/internal/service/trust"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// OrderDetails is the admin detail view of an order.
type OrderDetails struct {
	Order        order.Order   `json:"order"`
	TrustProfile trust.Profile `json:"trustProfile"`
}

// ListOrders returns one page of orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, model order.ListModel) (order.Page, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.ListOrders")
	defer span.End()

	filter := &order.QueryOrdersModel{}
	if model.Status != "" && model.Status != "all" {
		status, err := order.ParseStatus(model.Status)
		if err != nil {
			return order.Page{}, apperr.Wrap(apperr.CodeValidationFailed, err, "invalid status filter")
		}
		filter.Status = status
	}
	if model.Phone != "" {
		filter.PhoneKey = order.NormalizePhone(model.Phone)
		if filter.PhoneKey == "" {
			return order.Page{}, apperr.New(apperr.CodeValidationFailed, "phone filter has no digits")
		}
	}

	page, limit := model.Page, model.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if maxPage := (math.MaxInt-1)/limit + 1; page > maxPage {
		page = maxPage
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return order.Page{}, apperr.Downstream(err, "failed to count orders")
	}

	orders := []order.Order{}
	if filter.Offset < total {
		orders, err = s.orderRepo.Query(ctx, filter)
		if err != nil {
			return order.Page{}, apperr.Downstream(err, "failed to query orders")
		}
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return order.Page{}, err
	}

	return order.Page{
		Orders:     orders,
		Pagination: order.NewPagination(page, limit, total),
	}, nil
}

// GetOrder returns an order with its items, live product data where the product still
// exists, and a freshly computed trust profile of the customer.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (OrderDetails, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.GetOrder")
	defer span.End()

	o, err := s.orderRepo.Get(ctx, id)
	if err != nil {
		return OrderDetails{}, apperr.Downstream(err, "failed to get order")
	}

	var (
		profile trust.Profile
		items   []orderitem.OrderItem
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		withItems := []order.Order{o}
		if err := s.attachItems(gctx, withItems); err != nil {
			return err
		}
		items = withItems[0].Items
		s.attachProducts(gctx, items)

		return nil
	})

	g.Go(func() error {
		history, err := s.orderRepo.CountStatusesByPhone(gctx, o.PhoneKey, o.ID)
		if err != nil {
			return apperr.Downstream(err, "failed to load customer history")
		}
		profile = trust.Score(history)

		return nil
	})

	if err := g.Wait(); err != nil {
		return OrderDetails{}, err
	}
	o.Items = items

	return OrderDetails{Order: o, TrustProfile: profile}, nil
}

// attachItems loads the items of every order in one query.
func (s *OrderService) attachItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	items, err := s.orderItemRepo.Query(ctx, &orderitem.QueryOrderItemsModel{OrderIds: ids})
	if err != nil {
		return apperr.Downstream(err, "failed to load order items")
	}

	byOrder := make(map[uuid.UUID][]orderitem.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []orderitem.OrderItem{}
		}
	}

	return nil
}

// attachProducts sets the live catalog entry on items. Lookup failures leave Product nil.
func (s *OrderService) attachProducts(ctx context.Context, items []orderitem.OrderItem) {
	if len(items) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		slog.Warn("Failed to load live products for order items", "error", err)

		return
	}

	for i := range items {
		if p, ok := products[items[i].ProductID]; ok {
			items[i].Product = &p
		}
	}
}
