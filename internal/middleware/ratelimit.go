package middleware

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/caseflow/intake/internal/config"
	svcerr "github.com/caseflow/intake/internal/errors"
)

// RateLimiter throttles requests per client IP using a token bucket per
// caller.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	version  string
}

// NewRateLimiter creates a limiter from configuration. version is stamped
// into the error envelope of throttled responses.
func NewRateLimiter(cfg config.RateLimitConfig, version string) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		version:  version,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Middleware rejects callers over their budget with a 429 envelope.
func (rl *RateLimiter) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.limiter(clientIP(r)).Allow() {
				writeServiceError(w, rl.version, svcerr.RateLimitExceeded())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
