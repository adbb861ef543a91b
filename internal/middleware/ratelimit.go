// internal/middleware/ratelimit.go
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	apperrors "qrstudio-backend/pkg/errors"
	"qrstudio-backend/pkg/utils"
)

const (
	maxTrackedClients = 10000
	limiterIdleTTL    = 10 * time.Minute
)

// RateLimiter hands out a token bucket per caller. Authenticated callers are
// keyed by subject, guests by client IP. Buckets idle for limiterIdleTTL are
// evicted.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rps      rate.Limit
	burst    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, limiterIdleTTL),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters.Get(key); ok {
		// Re-adding refreshes the idle expiry.
		l.limiters.Add(key, lim)
		return lim
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	l.limiters.Add(key, lim)
	return lim
}

// Allow consumes one token for key.
func (l *RateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

// Middleware must run after the auth middleware so subjects are known.
func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(1 / float64(l.rps))))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + utils.GetClientIP(r)
			if identity := IdentityFromContext(r.Context()); !identity.IsGuest() {
				key = "sub:" + identity.Subject
			}
			if !l.Allow(key) {
				w.Header().Set("Retry-After", retryAfter)
				utils.SendErrorResponse(w, r, apperrors.NewAppError(
					apperrors.ErrRateLimited,
					http.StatusTooManyRequests,
					"too many requests",
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
