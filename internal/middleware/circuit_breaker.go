package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// CircuitState is where a CircuitBreaker sits in its closed/open/half-open cycle
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // calls pass through
	CircuitOpen                         // calls are rejected until the cool-down ends
	CircuitHalfOpen                     // trial calls decide whether to close again
)

// String names the state for logs
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreaker stops calls to the generation service after FailureThreshold
// consecutive failures, then lets trial calls through once Timeout has passed
// since the circuit opened. SuccessThreshold trial successes close it again;
// one trial failure reopens it.
type CircuitBreaker struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
	// OnStateChange is called with the lock held; it must not call back into the breaker.
	OnStateChange func(from, to CircuitState)

	mu        sync.Mutex
	state     CircuitState
	failures  int // consecutive, while closed
	successes int // trial successes, while half-open
	openedAt  time.Time
	now       func() time.Time
}

// NewCircuitBreaker opens after 5 failures and retries after 30s
func NewCircuitBreaker() *CircuitBreaker {
	return NewCircuitBreakerWithConfig(5, 2, 30*time.Second)
}

// NewCircuitBreakerWithConfig creates a breaker with explicit thresholds
func NewCircuitBreakerWithConfig(failureThreshold, successThreshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
		Timeout:          timeout,
		now:              time.Now,
	}
}

// State reports the current state without advancing the cool-down
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Allow reports whether a call may go ahead. An open circuit whose cool-down
// has elapsed moves to half-open and allows the call.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen {
		if cb.now().Sub(cb.openedAt) < cb.Timeout {
			return false
		}
		cb.moveTo(CircuitHalfOpen)
	}
	return true
}

// RecordSuccess notes a call the generation service answered
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		cb.successes++
		if cb.successes >= cb.SuccessThreshold {
			cb.moveTo(CircuitClosed)
		}
	}
}

// RecordFailure notes a call the generation service failed
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.FailureThreshold {
			cb.moveTo(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.moveTo(CircuitOpen)
	}
}

// moveTo switches state and resets the counters of the state being entered
func (cb *CircuitBreaker) moveTo(to CircuitState) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.failures, cb.successes = 0, 0
	if to == CircuitOpen {
		cb.openedAt = cb.now()
	}
	if cb.OnStateChange != nil {
		cb.OnStateChange(from, to)
	}
}

const upstreamFailureKey = "generation_failed"

// MarkUpstreamFailure flags the request as failed by the generation service,
// which is the only outcome CircuitBreakerMiddleware counts against the circuit
func MarkUpstreamFailure(c *gin.Context) {
	c.Set(upstreamFailureKey, true)
}

// CircuitBreakerMiddleware rejects generation routes while the circuit is open.
// Requests flagged with MarkUpstreamFailure count as failures; other server
// errors, such as an unreachable catalog, count as neither outcome.
func CircuitBreakerMiddleware(cb *CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cb.Allow() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": APIError{
					Code:       ErrCodeCircuitOpen,
					Message:    "Generation service is temporarily unavailable due to repeated failures",
					RetryAfter: int(cb.Timeout.Milliseconds()),
				},
			})
			return
		}

		c.Next()

		switch {
		case c.GetBool(upstreamFailureKey):
			cb.RecordFailure()
		case c.Writer.Status() < http.StatusInternalServerError:
			cb.RecordSuccess()
		}
	}
}
