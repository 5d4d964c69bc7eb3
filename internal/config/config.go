package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopfront/orders/pkg/logger"
	"github.com/spf13/viper"
)

func MustInit() {
	err := godotenv.Load("./.env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}
	SetupLogger()
	if err != nil {
		slog.Info("No .env file found, using the process environment")
	}

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/shop")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
}

func setDefaults() {
	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("server.http.max_body_bytes", 1<<20)
	viper.SetDefault("postgres.migrations_path", "./migrations")
	viper.SetDefault("shop.timezone", "UTC")
	viper.SetDefault("shop.drafts.list_limit", 100)
	viper.SetDefault("shop.drafts.autosave.requests", 30)
	viper.SetDefault("shop.drafts.autosave.window_seconds", 60)
	viper.SetDefault("rabbitmq.queue", "notifications")
	viper.SetDefault("rabbitmq.outbox.max_attempts", 5)
	viper.SetDefault("rabbitmq.outbox.retention_hours", 72)
	viper.SetDefault("otel.service_name", "shop")
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}

// Location returns the shop timezone used for dashboard day and month boundaries.
func Location() *time.Location {
	name := viper.GetString("shop.timezone")
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("Unknown shop timezone, falling back to UTC", "timezone", name, "error", err)

		return time.UTC
	}

	return loc
}
