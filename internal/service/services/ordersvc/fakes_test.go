package ordersvc

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/dal/interfaces/iorderitemrepo"
	"github.com/shopfront/orders/internal/dal/interfaces/iorderrepo"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/draft"
	"github.com/shopfront/orders/internal/service/models/notification"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/service/models/orderitem"
	"github.com/shopfront/orders/internal/service/models/product"
	"github.com/stretchr/testify/mock"
)

type memStore struct {
	mu     sync.Mutex
	orders map[uuid.UUID]order.Order
	items  map[uuid.UUID][]orderitem.OrderItem
	err    error
}

func newMemStore() *memStore {
	return &memStore{
		orders: map[uuid.UUID]order.Order{},
		items:  map[uuid.UUID][]orderitem.OrderItem{},
	}
}

type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) Insert(_ context.Context, o order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	o.Items = nil
	r.s.orders[o.ID] = o
	return nil
}

func (r memOrderRepo) Get(_ context.Context, id uuid.UUID) (order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return order.Order{}, r.s.err
	}
	o, ok := r.s.orders[id]
	if !ok {
		return order.Order{}, apperr.Newf(apperr.CodeNotFound, "order %s not found", id)
	}
	return o, nil
}

func (r memOrderRepo) filter(f *order.QueryOrdersModel) []order.Order {
	var out []order.Order
	for _, o := range r.s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.PhoneKey != "" && o.PhoneKey != f.PhoneKey {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memOrderRepo) Query(_ context.Context, f *order.QueryOrdersModel) ([]order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	out := r.filter(f)
	if f.Offset >= len(out) {
		return []order.Order{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memOrderRepo) Count(_ context.Context, f *order.QueryOrdersModel) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return 0, r.s.err
	}
	return len(r.filter(f)), nil
}

func (r memOrderRepo) Update(_ context.Context, o order.Order, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return apperr.ErrConflict
	}
	for id, other := range r.s.orders {
		if id != o.ID && o.TrackingID != "" && other.TrackingID == o.TrackingID {
			return order.ErrDuplicateTrackingID
		}
	}
	o.Items = nil
	o.Version = expectedVersion + 1
	r.s.orders[o.ID] = o
	return nil
}

func (r memOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return apperr.Newf(apperr.CodeNotFound, "order %s not found", id)
	}
	delete(r.s.orders, id)
	delete(r.s.items, id)
	return nil
}

func (r memOrderRepo) CountStatusesByPhone(_ context.Context, phoneKey string, excludeID uuid.UUID) (map[order.Status]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	counts := map[order.Status]int{}
	for id, o := range r.s.orders {
		if id != excludeID && phoneKey != "" && o.PhoneKey == phoneKey {
			counts[o.Status]++
		}
	}
	return counts, nil
}

type memItemRepo struct{ s *memStore }

func (r memItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range items {
		item.Product = nil
		r.s.items[item.OrderID] = append(r.s.items[item.OrderID], item)
	}
	return nil
}

func (r memItemRepo) Query(_ context.Context, f *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []orderitem.OrderItem
	for _, id := range f.OrderIds {
		out = append(out, r.s.items[id]...)
	}
	return out, nil
}

func (r memItemRepo) DeleteByOrderID(_ context.Context, orderID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, orderID)
	return nil
}

// memUOW writes straight through to the store; committed records whether Commit ran.
type memUOW struct {
	s         *memStore
	committed *int
}

func (u memUOW) Begin(context.Context) error { return nil }
func (u memUOW) Commit() error {
	*u.committed++
	return nil
}
func (u memUOW) Rollback() error { return nil }
func (u memUOW) OrderRepository() iorderrepo.IOrderRepository {
	return memOrderRepo{s: u.s}
}
func (u memUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return memItemRepo{s: u.s}
}

type catalog map[uuid.UUID]product.Product

func (c catalog) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]product.Product, error) {
	out := map[uuid.UUID]product.Product{}
	for _, id := range ids {
		if p, ok := c[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type mockEmitter struct{ mock.Mock }

func (m *mockEmitter) Emit(ctx context.Context, n notification.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockDraftRepo struct{ mock.Mock }

func (m *mockDraftRepo) Upsert(ctx context.Context, d draft.Draft) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDraftRepo) List(ctx context.Context, limit int) ([]draft.Draft, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]draft.Draft), args.Error(1)
}

func (m *mockDraftRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDraftRepo) Prune(ctx context.Context, keep int) (int64, error) {
	args := m.Called(ctx, keep)
	return args.Get(0).(int64), args.Error(1)
}
