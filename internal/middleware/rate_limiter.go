package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter decides whether a caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int)
	Limit() int
	Period() time.Duration
}

// RateLimiter implements a simple in-process token bucket rate limiter
type RateLimiter struct {
	mu           sync.Mutex
	tokens       map[string]int
	lastRefill   map[string]time.Time
	maxTokens    int
	refillRate   int           // tokens per refill
	refillPeriod time.Duration // how often to refill
	now          func() time.Time
}

// NewRateLimiter creates a new rate limiter
// maxTokens: maximum tokens per client
// refillRate: how many tokens to add per refill period
// refillPeriod: how often to refill tokens
func NewRateLimiter(maxTokens, refillRate int, refillPeriod time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:       make(map[string]int),
		lastRefill:   make(map[string]time.Time),
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
		now:          time.Now,
	}
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	// Initialize if first time
	if _, exists := rl.tokens[key]; !exists {
		rl.tokens[key] = rl.maxTokens
		rl.lastRefill[key] = now
	}

	// Refill tokens
	elapsed := now.Sub(rl.lastRefill[key])
	refills := int(elapsed / rl.refillPeriod)
	if refills > 0 {
		rl.tokens[key] += refills * rl.refillRate
		if rl.tokens[key] > rl.maxTokens {
			rl.tokens[key] = rl.maxTokens
		}
		rl.lastRefill[key] = now
	}

	if rl.tokens[key] > 0 {
		rl.tokens[key]--
		return true, rl.tokens[key]
	}
	return false, 0
}

// Limit returns the bucket size
func (rl *RateLimiter) Limit() int { return rl.maxTokens }

// Period returns the refill period
func (rl *RateLimiter) Period() time.Duration { return rl.refillPeriod }

// WindowCounter counts hits for a key within a fixed window
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// SharedRateLimiter is a fixed-window limiter whose counters live in a
// shared store, so several server replicas enforce one budget. Counters are
// namespaced by scope so limiters stacked on one route keep separate budgets.
// When the store errors it falls back to the in-process limiter.
type SharedRateLimiter struct {
	store    WindowCounter
	scope    string
	limit    int
	window   time.Duration
	fallback *RateLimiter
	logger   *zap.Logger
}

// NewSharedRateLimiter creates a store-backed limiter allowing limit hits per
// window, with its counters kept under scope
func NewSharedRateLimiter(store WindowCounter, scope string, limit int, window time.Duration, fallback *RateLimiter, logger *zap.Logger) *SharedRateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SharedRateLimiter{store: store, scope: scope, limit: limit, window: window, fallback: fallback, logger: logger}
}

// Allow checks the shared counter for key
func (s *SharedRateLimiter) Allow(ctx context.Context, key string) (bool, int) {
	n, err := s.store.IncrWindow(ctx, s.scope+":"+key, s.window)
	if err != nil {
		s.logger.Warn("shared rate limit store unavailable, using local limiter", zap.String("scope", s.scope), zap.Error(err))
		return s.fallback.Allow(ctx, key)
	}
	remaining := s.limit - int(n)
	if remaining < 0 {
		return false, 0
	}
	return true, remaining
}

// Limit returns the hits allowed per window
func (s *SharedRateLimiter) Limit() int { return s.limit }

// Period returns the window length
func (s *SharedRateLimiter) Period() time.Duration { return s.window }

// RateLimitMiddleware creates a rate limiting middleware keyed by client IP
func RateLimitMiddleware(rl Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		allowed, remaining := rl.Allow(c.Request.Context(), key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": APIError{
					Code:       ErrCodeRateLimited,
					Message:    "Too many requests, please try again later",
					RetryAfter: int(rl.Period().Milliseconds()),
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// NewDefaultRateLimiter allows 100 requests per minute per client
func NewDefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(100, 10, time.Minute)
}

// NewStrictRateLimiter allows 10 generation runs per minute per client
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(10, 1, time.Minute)
}
