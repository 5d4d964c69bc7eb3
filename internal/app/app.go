package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopfront/orders/internal/config"
	"github.com/shopfront/orders/internal/dal/postgres"
	"github.com/shopfront/orders/internal/dal/rabbitmq"
	"github.com/shopfront/orders/internal/dal/redis"
	notificationrepo "github.com/shopfront/orders/internal/dal/repositories/notification/rabbitmq"
	outboxrepo "github.com/shopfront/orders/internal/dal/repositories/outbox/postgres"
	"github.com/shopfront/orders/internal/otel"
	"github.com/shopfront/orders/internal/service/models/outbox"
	"github.com/shopfront/orders/internal/service/models/zone"
	"github.com/shopfront/orders/internal/service/services/dashboardsvc"
	"github.com/shopfront/orders/internal/service/services/draftsvc"
	"github.com/shopfront/orders/internal/service/services/fulfillmentsvc"
	"github.com/shopfront/orders/internal/service/services/ordersvc"
	httptransport "github.com/shopfront/orders/internal/transport/http"
	outboxworker "github.com/shopfront/orders/internal/worker/outbox"
	"github.com/shopfront/orders/pkg/http/middleware/auth"
	"github.com/shopfront/orders/pkg/http/middleware/ratelimit"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// App is the shop API: storefront checkout and the admin console backend.
type App struct {
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitMqClient *rabbitmq.Client
	redisClient    *redis.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel(viper.GetString("otel.service_name"))
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	queue := viper.GetString("rabbitmq.queue")
	if _, err := rabbitMqClient.DeclareQueue(rabbitmq.DeclareQueueConfig{Name: queue, Durable: true}); err != nil {
		panic(err)
	}

	outboxRepository := outboxrepo.NewOutboxRepository(postgresClient.DB())
	emitter := notificationrepo.NewNotificationRabbitMQRepository(
		rabbitMqClient,
		outboxRepository,
		queue,
		viper.GetInt("rabbitmq.outbox.max_attempts"),
	)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithNotificationEmitter(emitter),
		ordersvc.WithDeliveryRates(deliveryRates()),
	)
	fulfillmentSvc := fulfillmentsvc.MustNewFulfillmentService(
		fulfillmentsvc.WithPostgresClient(postgresClient),
	)
	draftSvc := draftsvc.MustNewDraftService(
		draftsvc.WithPostgresClient(postgresClient),
		draftsvc.WithListLimit(viper.GetInt("shop.drafts.list_limit")),
	)
	dashboardSvc := dashboardsvc.MustNewDashboardService(
		dashboardsvc.WithPostgresClient(postgresClient),
		dashboardsvc.WithLocation(config.Location()),
	)

	redisClient, err := redis.NewClient()
	if err != nil {
		slog.Warn("Redis unavailable, draft autosave is limited per instance", "error", err)
	}

	secret := os.Getenv("SHOP_JWT_SECRET")
	if secret == "" {
		panic("SHOP_JWT_SECRET is not set")
	}

	transport := httptransport.NewHTTPTransport(
		httptransport.Services{
			Orders:      orderSvc,
			Fulfillment: fulfillmentSvc,
			Drafts:      draftSvc,
			Dashboard:   dashboardSvc,
		},
		auth.NewVerifier([]byte(secret), viper.GetString("auth.issuer")),
		autosaveLimiter(redisClient),
	)
	transport.RegisterRoutes()

	return &App{
		transport:      transport,
		outboxWorker:   outboxworker.NewWorker(outboxRepository, rabbitMqClient, outbox.KindNotification),
		postgresClient: postgresClient,
		rabbitMqClient: rabbitMqClient,
		redisClient:    redisClient,
		otelController: otelController,
	}
}

func deliveryRates() map[zone.Zone]decimal.Decimal {
	rates := make(map[zone.Zone]decimal.Decimal)
	for _, z := range zone.All {
		raw := viper.GetString("shop.delivery_charge." + z.String())
		if raw == "" {
			continue
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			panic("invalid delivery charge for " + z.String() + ": " + err.Error())
		}
		rates[z] = rate
	}

	return rates
}

func autosaveLimiter(redisClient *redis.Client) ratelimit.Limiter {
	requests := viper.GetInt("shop.drafts.autosave.requests")
	window := time.Duration(viper.GetInt("shop.drafts.autosave.window_seconds")) * time.Second

	local := ratelimit.NewLocalLimiter(requests, window)
	if redisClient == nil {
		return local
	}

	return ratelimit.NewFallback(
		ratelimit.NewRedisLimiter(redisClient.Cmdable(), "shop:autosave:", requests, window),
		local,
	)
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting outbox worker")
		a.outboxWorker.Start(ctx)
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Error("Redis connection close error", "error", err)
		}
	}

	if err := a.postgresClient.Close(); err != nil {
		slog.Error("Database connection close error", "error", err)
	} else {
		slog.Info("Database connection closed gracefully")
	}

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
