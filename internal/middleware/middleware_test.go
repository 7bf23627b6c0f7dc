package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_AllowAndRefill(t *testing.T) {
	rl := NewRateLimiter(2, 1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	ok, remaining := rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	// other clients have their own bucket
	ok, _ = rl.Allow(ctx, "5.6.7.8")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
}

type fakeCounter struct {
	hits map[string]int64
	err  error
}

func (f *fakeCounter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.hits[key]++
	return f.hits[key], nil
}

func TestSharedRateLimiter(t *testing.T) {
	counter := &fakeCounter{hits: map[string]int64{}}
	rl := NewSharedRateLimiter(counter, "api", 2, time.Minute, NewRateLimiter(1, 1, time.Minute), nil)
	ctx := context.Background()

	ok, remaining := rl.Allow(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = rl.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = rl.Allow(ctx, "a")
	assert.False(t, ok)
}

func TestSharedRateLimiter_FallsBackOnStoreError(t *testing.T) {
	counter := &fakeCounter{err: errors.New("connection refused")}
	rl := NewSharedRateLimiter(counter, "api", 100, time.Minute, NewRateLimiter(1, 1, time.Minute), nil)

	ok, _ := rl.Allow(context.Background(), "a")
	assert.True(t, ok)
	ok, _ = rl.Allow(context.Background(), "a")
	assert.False(t, ok, "fallback limiter allows one request")
}

func TestSharedRateLimiter_ScopesKeepSeparateBudgets(t *testing.T) {
	// one counter map, keyed exactly as received, like the redis store
	counter := &fakeCounter{hits: map[string]int64{}}
	api := NewSharedRateLimiter(counter, "api", 100, time.Minute, NewDefaultRateLimiter(), nil)
	builds := NewSharedRateLimiter(counter, "build", 2, time.Minute, NewStrictRateLimiter(), nil)

	r := gin.New()
	v1 := r.Group("/api/v1", RateLimitMiddleware(api))
	v1.GET("/sets/:set/inventory", func(c *gin.Context) { c.Status(http.StatusOK) })
	v1.POST("/builds", RateLimitMiddleware(builds), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 12; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sets/75192/inventory", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	codes := make([]int, 0, 3)
	var remaining []string
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/builds", nil))
		codes = append(codes, w.Code)
		remaining = append(remaining, w.Header().Get("X-RateLimit-Remaining"))
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, []string{"1", "0", "0"}, remaining)

	ip := "192.0.2.1"
	assert.Equal(t, int64(15), counter.hits["api:"+ip])
	assert.Equal(t, int64(3), counter.hits["build:"+ip])
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(NewRateLimiter(1, 1, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), ErrCodeRateLimited)
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(2, 1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	var transitions []string
	cb.OnStateChange = func(from, to CircuitState) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}

	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	now = now.Add(59 * time.Second)
	assert.False(t, cb.Allow())

	now = now.Add(time.Second)
	assert.True(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(1, 2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(2 * time.Minute)
	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, CircuitHalfOpen, cb.State(), "needs two trial successes")

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow(), "cool-down restarts when the circuit reopens")
}

func TestCircuitBreaker_SuccessResetsFailureStreak(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(2, 1, time.Minute)
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(1, 1, time.Minute)

	r := gin.New()
	r.Use(CircuitBreakerMiddleware(cb))
	r.POST("/catalog-down", func(c *gin.Context) { CatalogUnavailable(c, "status 500") })
	r.POST("/generation-down", func(c *gin.Context) { GenerationFailed(c) })

	// an unreachable catalog is not the generation service's fault
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/catalog-down", nil))
		assert.Equal(t, http.StatusBadGateway, w.Code)
	}
	require.Equal(t, CircuitClosed, cb.State())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generation-down", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, CircuitOpen, cb.State())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/catalog-down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), ErrCodeCircuitOpen)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) { seen = GetRequestID(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "6f1c2d0e-8a43-4f57-9d2b-3b1f1b0a9c11")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "6f1c2d0e-8a43-4f57-9d2b-3b1f1b0a9c11", seen)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RequestLogger(zap.New(core), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/sets/:set", func(c *gin.Context) { c.String(http.StatusNotFound, "nope") })
	r.POST("/builds", func(c *gin.Context) {
		_ = c.Error(errors.New("upstream 500"))
		c.Status(http.StatusBadGateway)
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/health", nil),
		httptest.NewRequest(http.MethodGet, "/sets/75192?verbose=1", nil),
		httptest.NewRequest(http.MethodPost, "/builds", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 2, "successful health checks are not logged")

	notFound := entries[0].ContextMap()
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "/sets/:set", notFound["route"])
	assert.Equal(t, "verbose=1", notFound["query"])
	assert.Equal(t, int64(4), notFound["bytes"])
	assert.NotEmpty(t, notFound["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, []interface{}{"upstream 500"}, entries[1].ContextMap()["errors"])
}
