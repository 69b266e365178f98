package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

func TestRateLimiterBurstAndRefill(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 2)
	clock := time.Unix(1000, 0)
	rl.now = func() time.Time { return clock }

	ok, _ := rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, wait := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "buckets are per client")

	clock = clock.Add(time.Second)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestRateLimiterEvictsIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 1)
	clock := time.Unix(1000, 0)
	rl.now = func() time.Time { return clock }
	rl.Allow("a")

	rl.evict(clock.Add(time.Second))
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.buckets)
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 0.5, 1)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/receptionist/conversation", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req.RemoteAddr = "192.0.2.1:5001"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/health"`)
}
