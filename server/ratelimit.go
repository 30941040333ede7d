package server

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/giygas/medicines-api/handlers"
	"github.com/giygas/medicines-api/interfaces"
	"github.com/giygas/medicines-api/logging"
	"github.com/juju/ratelimit"
)

// Compile-time check to ensure RateLimiter implements BucketSweeper
var _ interfaces.BucketSweeper = (*RateLimiter)(nil)

type clientBucket struct {
	bucket   *ratelimit.Bucket
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address
type RateLimiter struct {
	rate     float64
	capacity int64
	now      func() time.Time

	mu      sync.Mutex
	clients map[string]*clientBucket
}

// NewRateLimiter creates a limiter refilling rate tokens per second up to capacity
func NewRateLimiter(rate float64, capacity int64) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		capacity: capacity,
		now:      time.Now,
		clients:  make(map[string]*clientBucket),
	}
}

func (rl *RateLimiter) bucket(client string) *ratelimit.Bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[client]
	if !ok {
		c = &clientBucket{bucket: ratelimit.NewBucketWithRate(rl.rate, rl.capacity)}
		rl.clients[client] = c
	}
	c.lastSeen = rl.now()
	return c.bucket
}

// Sweep forgets clients idle for longer than maxIdle, or whose bucket has
// refilled completely, and returns the number of clients left.
func (rl *RateLimiter) Sweep(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	for client, c := range rl.clients {
		if c.lastSeen.Before(cutoff) || c.bucket.Available() >= c.bucket.Capacity() {
			delete(rl.clients, client)
		}
	}
	return len(rl.clients)
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// tokenCost prices a request. Pages and probes are free or cheap, endpoints
// returning the whole price distribution or manufacturer list cost more.
func tokenCost(path string) int64 {
	switch path {
	case "/", "/favicon.ico", "/metrics":
		return 0
	case "/health":
		return 5
	case "/api/price-stats", "/api/companies":
		return 50
	case "/api/suggestions":
		return 5
	}

	if strings.HasPrefix(path, "/static/") {
		return 0
	}
	return 10
}

// Middleware rejects clients that ran out of tokens with 429
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	limit := strconv.FormatInt(rl.capacity, 10)
	rate := strconv.FormatFloat(rl.rate, 'f', -1, 64)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cost := tokenCost(r.URL.Path)
		if cost == 0 {
			next.ServeHTTP(w, r)
			return
		}

		bucket := rl.bucket(clientKey(r))

		w.Header().Set("X-RateLimit-Limit", limit)
		w.Header().Set("X-RateLimit-Rate", rate)

		// a refused request takes no tokens
		if _, ok := bucket.TakeMaxDuration(cost, 0); !ok {
			logging.Warn("Rate limit exceeded", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			handlers.RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		next.ServeHTTP(w, r)
	})
}
