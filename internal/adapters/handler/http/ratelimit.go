package http

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipRateLimiter keeps one token bucket per client address. Buckets that have
// refilled completely are dropped on the next sweep.
type ipRateLimiter struct {
	limit rate.Limit
	burst int

	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	lastCleanup time.Time
}

func newIPRateLimiter(requests int, window time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		limit:       rate.Limit(float64(requests) / window.Seconds()),
		burst:       requests,
		limiters:    make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
	}
}

func (l *ipRateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) > 5*time.Minute {
		for k, lim := range l.limiters {
			if lim.Tokens() >= float64(l.burst) {
				delete(l.limiters, k)
			}
		}
		l.lastCleanup = time.Now()
	}

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// rateLimitPerMinute limits each client IP to requests per minute. A
// non-positive limit disables the middleware.
func rateLimitPerMinute(requests int) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := newIPRateLimiter(requests, time.Minute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			lim := limiter.get(key)

			if !lim.Allow() {
				reservation := lim.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				w.Header().Set("Retry-After", strconv.Itoa(max(int(delay.Seconds()), 1)))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(requests))
				loggerFrom(r.Context()).WarnContext(r.Context(), "rate limit exceeded", "key", key)
				writeError(w, r, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keys on the socket peer unless middleware.RealIP rewrote RemoteAddr.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
