package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/sessions/internal/errors"
	"github.com/allisson/sessions/internal/httputil"
)

// rateLimiterStore holds keyed rate limiters with automatic cleanup.
type rateLimiterStore[K comparable] struct {
	limiters sync.Map // map[K]*rateLimiterEntry
	rps      float64
	burst    int
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

func newRateLimiterStore[K comparable](ctx context.Context, rps float64, burst int) *rateLimiterStore[K] {
	store := &rateLimiterStore[K]{
		rps:   rps,
		burst: burst,
	}

	// Cleanup stale limiters every 5 minutes until ctx is done
	go store.cleanupStale(ctx, 5*time.Minute)

	return store
}

// RateLimitMiddleware enforces per-user rate limiting on authenticated requests.
//
// MUST be used after RequireAuthentication (requires a principal in context).
// Uses token bucket algorithm via golang.org/x/time/rate. The cleanup goroutine
// stops when ctx is done.
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newRateLimiterStore[uuid.UUID](ctx, rps, burst)

	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no principal in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !store.allow(c, principal.UserID, logger) {
			return
		}
		c.Next()
	}
}

// IPRateLimitMiddleware enforces per-IP rate limiting on the unauthenticated
// login and refresh endpoints to slow down credential stuffing.
//
// Uses c.ClientIP() which honours X-Forwarded-For and X-Real-IP according to
// the engine's trusted proxies.
func IPRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newRateLimiterStore[string](ctx, rps, burst)

	return func(c *gin.Context) {
		if !store.allow(c, c.ClientIP(), logger) {
			return
		}
		c.Next()
	}
}

// allow consumes one token for key. When the bucket is empty it writes the 429
// response, aborts the chain and returns false.
func (s *rateLimiterStore[K]) allow(c *gin.Context, key K, logger *slog.Logger) bool {
	limiter := s.getLimiter(key)
	if limiter.Allow() {
		return true
	}

	// Calculate retry-after delay
	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()
	if retryAfter < 1 {
		retryAfter = 1
	}

	logger.Debug("rate limit exceeded",
		slog.String("key", fmt.Sprint(key)),
		slog.String("path", c.Request.URL.Path),
		slog.Int("retry_after", retryAfter))

	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":   "rate_limit_exceeded",
		"message": "Too many requests. Please retry after the specified delay.",
	})
	c.Abort()
	return false
}

// getLimiter retrieves or creates the rate limiter for key.
func (s *rateLimiterStore[K]) getLimiter(key K) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &rateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}

	actual, _ := s.limiters.LoadOrStore(key, entry)
	return actual.(*rateLimiterEntry).limiter
}

// cleanupStale removes rate limiters that haven't been accessed in the last hour.
func (s *rateLimiterStore[K]) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			threshold := time.Now().Add(-1 * time.Hour)
			s.limiters.Range(func(key, value any) bool {
				entry := value.(*rateLimiterEntry)
				entry.mu.Lock()
				shouldDelete := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if shouldDelete {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
