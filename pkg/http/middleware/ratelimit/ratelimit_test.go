package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiterPerKey(t *testing.T) {
	l := NewLocalLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok)
}

func TestLocalLimiterDropsIdleKeys(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocalLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_, err := l.Allow(ctx, fmt.Sprintf("10.0.%d.%d", i/256, i%256))
		require.NoError(t, err)
	}
	assert.Equal(t, 1000, l.Len())

	ok, _ := l.Allow(ctx, "10.0.0.0")
	assert.False(t, ok)

	now = now.Add(30 * time.Second)
	_, _ = l.Allow(ctx, "10.9.9.9")
	assert.Equal(t, 1001, l.Len())

	now = now.Add(40 * time.Second)
	ok, err := l.Allow(ctx, "10.0.0.0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, l.Len())
}

type stubLimiter struct {
	ok  bool
	err error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.ok, s.err }

func TestFallback(t *testing.T) {
	ctx := context.Background()

	ok, err := NewFallback(stubLimiter{ok: false}, stubLimiter{ok: true}).Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewFallback(stubLimiter{err: errors.New("down")}, stubLimiter{ok: true}).Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterUnreachableFallsBack(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	primary := NewRedisLimiter(client, "test:", 1, time.Minute)
	_, err := primary.Allow(context.Background(), "k")
	assert.Error(t, err)

	l := NewFallback(primary, NewLocalLimiter(1, time.Minute))
	ok, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimitMiddleware(t *testing.T) {
	h := NewRateLimitMiddleware(NewLocalLimiter(1, time.Minute), ClientIP, func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/checkout/drafts", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	h := NewRateLimitMiddleware(stubLimiter{err: errors.New("down")}, ClientIP, func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
