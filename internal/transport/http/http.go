package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/actor"
	"github.com/shopfront/orders/internal/service/models/dashboard"
	"github.com/shopfront/orders/internal/service/models/draft"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/service/services/fulfillmentsvc"
	"github.com/shopfront/orders/internal/service/services/ordersvc"
	assigncourier "github.com/shopfront/orders/internal/transport/http/assign_courier"
	bulkassigncourier "github.com/shopfront/orders/internal/transport/http/bulk_assign_courier"
	createorder "github.com/shopfront/orders/internal/transport/http/create_order"
	deletedraft "github.com/shopfront/orders/internal/transport/http/delete_draft"
	deleteorder "github.com/shopfront/orders/internal/transport/http/delete_order"
	getdashboard "github.com/shopfront/orders/internal/transport/http/get_dashboard"
	getorder "github.com/shopfront/orders/internal/transport/http/get_order"
	"github.com/shopfront/orders/internal/transport/http/httpio"
	listdrafts "github.com/shopfront/orders/internal/transport/http/list_drafts"
	listorders "github.com/shopfront/orders/internal/transport/http/list_orders"
	prunedrafts "github.com/shopfront/orders/internal/transport/http/prune_drafts"
	savedraft "github.com/shopfront/orders/internal/transport/http/save_draft"
	transitionstatus "github.com/shopfront/orders/internal/transport/http/transition_status"
	updateorder "github.com/shopfront/orders/internal/transport/http/update_order"
	"github.com/shopfront/orders/pkg/http/middleware/auth"
	"github.com/shopfront/orders/pkg/http/middleware/ratelimit"
	"github.com/shopfront/orders/pkg/http/middleware/trace"
	"github.com/shopfront/orders/pkg/logger"
	"github.com/spf13/viper"
)

type orderService interface {
	CreateOrder(ctx context.Context, model order.CreateModel) (order.Order, error)
	ListOrders(ctx context.Context, model order.ListModel) (order.Page, error)
	GetOrder(ctx context.Context, id uuid.UUID) (ordersvc.OrderDetails, error)
	UpdateOrderFields(ctx context.Context, by actor.Actor, id uuid.UUID, model order.UpdateModel) (order.Order, error)
	TransitionStatus(ctx context.Context, by actor.Actor, id uuid.UUID, next order.Status, version int64) (order.Order, error)
	DeleteOrder(ctx context.Context, by actor.Actor, id uuid.UUID) error
}

type fulfillmentService interface {
	AssignCourier(
		ctx context.Context,
		by actor.Actor,
		id uuid.UUID,
		courierName string,
		trackingID string,
		version int64,
	) (order.Order, error)
	BulkAssignCourier(ctx context.Context, by actor.Actor, ids []uuid.UUID, courierName string) (fulfillmentsvc.BulkResult, error)
}

type draftService interface {
	SaveDraft(ctx context.Context, data draft.Data, rawID string) (uuid.UUID, error)
	ListDrafts(ctx context.Context, limit int) ([]draft.Draft, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) error
	PruneDrafts(ctx context.Context, keep int) (int64, error)
}

type dashboardService interface {
	ComputeDashboard(ctx context.Context) (dashboard.Snapshot, error)
}

// Services are the use cases served over HTTP.
type Services struct {
	Orders      orderService
	Fulfillment fulfillmentService
	Drafts      draftService
	Dashboard   dashboardService
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	services Services
	verifier *auth.Verifier
	limiter  ratelimit.Limiter
}

// NewHTTPTransport creates the transport. limiter bounds draft autosaves per client.
func NewHTTPTransport(services Services, verifier *auth.Verifier, limiter ratelimit.Limiter) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		services: services,
		verifier: verifier,
		limiter:  limiter,
	}
}

// Handler returns the router, used by tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

func (h *HTTPTransport) Run() error {
	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpio.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	h.router.Route("/api", func(r chi.Router) {
		r.Route("/checkout", func(r chi.Router) {
			r.With(ratelimit.NewRateLimitMiddleware(h.limiter, ratelimit.ClientIP, httpio.TooManyRequests)).
				Post("/drafts", h.saveDraft)
			r.Post("/orders", h.createOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.NewAuthMiddleware(h.verifier, httpio.Unauthorized))

			r.Get("/dashboard", h.getDashboard)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.listOrders)
				r.Post("/courier/bulk", h.bulkAssignCourier)
				r.Get("/{id}", h.getOrder)
				r.Patch("/{id}", h.updateOrder)
				r.Delete("/{id}", h.deleteOrder)
				r.Post("/{id}/status", h.transitionStatus)
				r.Post("/{id}/courier", h.assignCourier)
			})

			r.Route("/drafts", func(r chi.Router) {
				r.Get("/", h.listDrafts)
				r.Post("/prune", h.pruneDrafts)
				r.Delete("/{id}", h.deleteDraft)
			})
		})
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.services.Orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.services.Orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.services.Orders)
}

func (h *HTTPTransport) updateOrder(w http.ResponseWriter, r *http.Request) {
	updateorder.UpdateOrder(w, r, h.services.Orders)
}

func (h *HTTPTransport) transitionStatus(w http.ResponseWriter, r *http.Request) {
	transitionstatus.TransitionStatus(w, r, h.services.Orders)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.services.Orders)
}

func (h *HTTPTransport) assignCourier(w http.ResponseWriter, r *http.Request) {
	assigncourier.AssignCourier(w, r, h.services.Fulfillment)
}

func (h *HTTPTransport) bulkAssignCourier(w http.ResponseWriter, r *http.Request) {
	bulkassigncourier.BulkAssignCourier(w, r, h.services.Fulfillment)
}

func (h *HTTPTransport) saveDraft(w http.ResponseWriter, r *http.Request) {
	savedraft.SaveDraft(w, r, h.services.Drafts)
}

func (h *HTTPTransport) listDrafts(w http.ResponseWriter, r *http.Request) {
	listdrafts.ListDrafts(w, r, h.services.Drafts)
}

func (h *HTTPTransport) deleteDraft(w http.ResponseWriter, r *http.Request) {
	deletedraft.DeleteDraft(w, r, h.services.Drafts)
}

func (h *HTTPTransport) pruneDrafts(w http.ResponseWriter, r *http.Request) {
	prunedrafts.PruneDrafts(w, r, h.services.Drafts)
}

func (h *HTTPTransport) getDashboard(w http.ResponseWriter, r *http.Request) {
	getdashboard.GetDashboard(w, r, h.services.Dashboard)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)
	router.Use(middleware.RequestSize(maxBodyBytes()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func maxBodyBytes() int64 {
	if n := viper.GetInt64("server.http.max_body_bytes"); n > 0 {
		return n
	}

	return httpio.DefaultMaxBodyBytes
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
