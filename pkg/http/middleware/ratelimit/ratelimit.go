// Package ratelimit bounds request volume per client key.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed window counter shared by every instance.
type RedisLimiter struct {
	client    redis.Cmdable
	keyPrefix string
	requests  int64
	window    time.Duration
}

// NewRedisLimiter allows requests per window for each key.
func NewRedisLimiter(client redis.Cmdable, keyPrefix string, requests int, window time.Duration) *RedisLimiter {
	if window < time.Second {
		window = time.Second
	}

	return &RedisLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		requests:  int64(requests),
		window:    window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().Unix() / int64(l.window/time.Second)
	redisKey := fmt.Sprintf("%s%s:%d", l.keyPrefix, key, bucket)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	return incr.Val() <= l.requests, nil
}

// LocalLimiter keeps a token bucket per key in process memory. Buckets idle for a full
// window are refilled anyway, so they are dropped on the next sweep.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows requests per window for each key, with bursts up to requests.
func NewLocalLimiter(requests int, window time.Duration) *LocalLimiter {
	if window < time.Second {
		window = time.Second
	}

	return &LocalLimiter{
		buckets: make(map[string]*localBucket),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		idle:    window,
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1), nil
}

// Len returns the number of tracked keys.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.buckets)
}

func (l *LocalLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// Fallback consults primary and switches to secondary for a request when primary errors.
type Fallback struct {
	primary   Limiter
	secondary Limiter
}

func NewFallback(primary, secondary Limiter) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := f.primary.Allow(ctx, key)
	if err == nil {
		return ok, nil
	}

	slog.Warn("Rate limiter unavailable, using local limiter", "error", err)

	return f.secondary.Allow(ctx, key)
}

// ClientIP keys requests by remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// NewRateLimitMiddleware answers 429 once key(r) is over the limit. Limiter errors let the request through.
func NewRateLimitMiddleware(
	l Limiter,
	key func(r *http.Request) string,
	tooMany func(w http.ResponseWriter),
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), key(r))
			if err != nil {
				slog.Error("Rate limiter failed", "error", err)
			}
			if err == nil && !ok {
				tooMany(w)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
