package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Client wraps the Redis connection used for shared rate limiting.
type Client struct {
	rdb *goredis.Client
}

// Cmdable returns the underlying command interface.
func (c *Client) Cmdable() goredis.Cmdable {
	return c.rdb
}

// Close closes the connection for graceful shutdown.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// NewClient connects to redis.addr. It returns nil, nil when Redis is not configured.
func NewClient() (*Client, error) {
	addr := viper.GetString("redis.addr")
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &Client{rdb: rdb}, nil
}
