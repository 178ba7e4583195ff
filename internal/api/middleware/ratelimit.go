package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UserRateLimiter applies a token bucket per user id. It guards expensive
// per-user operations such as feed refresh; IP-level limiting happens at
// the router.
type UserRateLimiter struct {
	clients  map[string]*userLimit
	now      func() time.Time
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	mu       sync.Mutex
	stopOnce sync.Once
	stop     chan struct{}
}

type userLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter allows burst requests, refilling one every interval
func NewUserRateLimiter(interval time.Duration, burst int) *UserRateLimiter {
	rl := &UserRateLimiter{
		clients: make(map[string]*userLimit),
		now:     time.Now,
		limit:   rate.Every(interval),
		burst:   burst,
		idleTTL: interval * time.Duration(burst+1),
		stop:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Middleware rejects requests over the caller's budget with 429.
// It must run after RequireUser.
func (rl *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := GetUserID(r)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.allow(userID) {
			slog.Info("user rate limit exceeded", "user", userID, "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "10")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "RateLimitExceeded",
				"message": "Too many requests. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stop ends the background cleanup
func (rl *UserRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *UserRateLimiter) allow(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, ok := rl.clients[userID]
	if !ok {
		client = &userLimit{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[userID] = client
	}
	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

// cleanup drops limiters idle long enough to have refilled completely
func (rl *UserRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *UserRateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	for userID, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, userID)
		}
	}
}
