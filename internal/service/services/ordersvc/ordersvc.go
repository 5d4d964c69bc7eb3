package ordersvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/dal/interfaces/idraftrepo"
	"github.com/shopfront/orders/internal/dal/interfaces/iorderitemrepo"
	"github.com/shopfront/orders/internal/dal/interfaces/iorderrepo"
	"github.com/shopfront/orders/internal/dal/interfaces/iproductrepo"
	"github.com/shopfront/orders/internal/dal/postgres"
	draftrepo "github.com/shopfront/orders/internal/dal/repositories/draft/postgres"
	orderrepo "github.com/shopfront/orders/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/shopfront/orders/internal/dal/repositories/orderitem/postgres"
	productrepo "github.com/shopfront/orders/internal/dal/repositories/product/postgres"
	"github.com/shopfront/orders/internal/dal/uow"
	"github.com/shopfront/orders/internal/service/models/notification"
	"github.com/shopfront/orders/internal/service/models/zone"
	"github.com/shopfront/orders/internal/service/tracking"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
}

type notificationEmitter interface {
	Emit(ctx context.Context, n notification.Notification) error
}

// OrderService is the order store: checkout, admin reads and edits.
type OrderService struct {
	newUOW        func() unitOfWork
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	productRepo   iproductrepo.IProductRepository
	draftRepo     idraftrepo.IDraftRepository
	emitter       notificationEmitter
	deliveryRates map[zone.Zone]decimal.Decimal
	newTrackingID tracking.Generator
	validate      *validator.Validate
	now           func() time.Time
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		deliveryRates: map[zone.Zone]decimal.Decimal{},
		newTrackingID: tracking.NewID,
		validate:      validator.New(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil || s.orderRepo == nil || s.orderItemRepo == nil || s.productRepo == nil {
		panic("ordersvc: order, order item and product stores are required")
	}

	return s
}

// WithPostgresClient wires every store of the OrderService to Postgres.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		db := pgClient.DB()
		s.newUOW = func() unitOfWork { return uow.NewUnitOfWork(db) }
		s.orderRepo = orderrepo.NewPostgresOrderRepository(db)
		s.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(db)
		s.productRepo = productrepo.NewProductRepository(db)
		s.draftRepo = draftrepo.NewDraftRepository(db)
	}
}

// WithUnitOfWork sets the transaction factory used for writes.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWork(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// WithOrderRepository sets the order store used for reads.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *OrderService) {
		s.orderRepo = repo
	}
}

// WithOrderItemRepository sets the order item store used for reads.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderItemRepository(repo iorderitemrepo.IOrderItemRepository) option {
	return func(s *OrderService) {
		s.orderItemRepo = repo
	}
}

// WithProductRepository sets the catalog.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.IProductRepository) option {
	return func(s *OrderService) {
		s.productRepo = repo
	}
}

// WithDraftRepository sets the draft store cleaned after checkout.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDraftRepository(repo idraftrepo.IDraftRepository) option {
	return func(s *OrderService) {
		s.draftRepo = repo
	}
}

// WithNotificationEmitter sets the admin notification emitter.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotificationEmitter(emitter notificationEmitter) option {
	return func(s *OrderService) {
		s.emitter = emitter
	}
}

// WithDeliveryRates sets per zone delivery charges. Zones without a rate keep the
// charge sent by the storefront.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDeliveryRates(rates map[zone.Zone]decimal.Decimal) option {
	return func(s *OrderService) {
		for z, rate := range rates {
			s.deliveryRates[z] = rate
		}
	}
}

// WithTrackingIDGenerator overrides tracking id generation.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTrackingIDGenerator(gen tracking.Generator) option {
	return func(s *OrderService) {
		s.newTrackingID = gen
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

func (s *OrderService) rollback(work unitOfWork) {
	if err := work.Rollback(); err != nil {
		slog.Error("Failed to rollback transaction", "error", err)
	}
}

func (s *OrderService) emit(ctx context.Context, n notification.Notification) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, n); err != nil {
		slog.Error("Failed to emit notification", "title", n.Title, "error", err)
	}
}

func (s *OrderService) deleteDraft(ctx context.Context, id uuid.UUID) {
	if s.draftRepo == nil {
		return
	}
	if err := s.draftRepo.Delete(ctx, id); err != nil {
		slog.Error("Failed to delete draft after checkout", "draft_id", id, "error", err)
	}
}
