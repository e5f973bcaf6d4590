package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"adminconsole/internal/pkg/errors"
	"adminconsole/internal/platform/config"
)

type RateLimiter struct {
	store  *sync.Map // map[string]*Bucket
	limits map[string]int
	now    func() time.Time
}

type Bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
	mu         sync.Mutex
}

// Limit kinds.
const (
	LimitRead  = "read"
	LimitWrite = "write"
)

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		store: &sync.Map{},
		limits: map[string]int{
			LimitRead:  cfg.ReadsPerMinute,
			LimitWrite: cfg.WritesPerMinute,
		},
		now: time.Now,
	}
}

// Sweep drops buckets not used for idle and returns how many were dropped.
func (rl *RateLimiter) Sweep(idle time.Duration) int {
	now := rl.now()
	n := 0
	rl.store.Range(func(key, value any) bool {
		bucket := value.(*Bucket)
		bucket.mu.Lock()
		if now.Sub(bucket.lastAccess) > idle {
			rl.store.Delete(key)
			n++
		}
		bucket.mu.Unlock()
		return true
	})
	return n
}

// Allow takes one token from key's bucket. Buckets refill continuously at
// limit tokens per minute.
func (rl *RateLimiter) Allow(key string, limit int) bool {
	now := rl.now()

	val, _ := rl.store.LoadOrStore(key, &Bucket{
		tokens:     limit,
		lastRefill: now,
		lastAccess: now,
	})

	bucket := val.(*Bucket)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.lastAccess = now

	elapsed := now.Sub(bucket.lastRefill)
	refillTokens := int(elapsed.Seconds() * float64(limit) / 60.0)
	if refillTokens > 0 {
		bucket.tokens = min(bucket.tokens+refillTokens, limit)
		bucket.lastRefill = now
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}
	return false
}

// RateLimit limits requests per session, or per client IP for requests
// without one. A non-positive limit disables the check.
func (rl *RateLimiter) RateLimit(kind string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			limit := rl.limits[kind]
			if limit <= 0 {
				next(w, r)
				return
			}

			var key string
			if sess := SessionFrom(r); sess != nil {
				key = "session:" + sess.ID + ":" + kind
			} else {
				ip, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					ip = r.RemoteAddr
				}
				key = "ip:" + ip + ":" + kind
			}

			if !rl.Allow(key, limit) {
				w.Header().Set("Retry-After", strconv.Itoa(max(1, 60/limit)))
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimited, "Rate limit exceeded", nil)
				return
			}

			next(w, r)
		}
	}
}
