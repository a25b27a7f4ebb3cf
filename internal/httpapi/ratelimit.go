package httpapi

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds limiter memory; the least recently seen client
// loses its bucket first.
const maxTrackedClients = 10_000

// RateLimiter applies a token bucket per client address.
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
	logger   *slog.Logger
	metrics  *Metrics
}

func NewRateLimiter(requestsPerSecond, burst int, logger *slog.Logger, metrics *Metrics) (*RateLimiter, error) {
	cache, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		return nil, fmt.Errorf("create limiter cache: %w", err)
	}
	return &RateLimiter{
		limiters: cache,
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Get(key); ok {
		return limiter
	}
	fresh := rate.NewLimiter(rl.rate, rl.burst)
	if existing, ok, _ := rl.limiters.PeekOrAdd(key, fresh); ok {
		return existing
	}
	return fresh
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientAddr(r)
		if !rl.getLimiter(key).Allow() {
			rl.logger.WarnContext(r.Context(), "rate limit exceeded",
				"client", key,
				"path", r.URL.Path,
				"method", r.Method,
			)
			if rl.metrics != nil {
				rl.metrics.RecordRateLimited(r.Context(), routePattern(r))
			}
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
