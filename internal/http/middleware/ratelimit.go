// Request throttling for the stories API, mostly aimed at scripted posting and
// reaction spam. Buckets live in process memory, one per voter identity or
// client IP, and are swept lazily. Each replica keeps its own budget.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc names the bucket a request draws from.
type keyFunc func(*gin.Context) string

// KeyByVoterOrIP buckets by "voter:<id>" when Identity ran and by
// "ip:<addr>" otherwise. A visitor who rotates X-Voter-Fingerprint lands in
// a new bucket; the limiter is a brake on floods, not a ballot guard (the
// one-reaction rule lives in the reactions table).
func KeyByVoterOrIP() keyFunc {
	return func(c *gin.Context) string {
		if id := VoterID(c); id != "" {
			return "voter:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

// visitor is one bucket plus the time it was last drawn from.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles voters with token buckets created on first use.
// Buckets idle for ten minutes are dropped. Safe for concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64
}

// NewRateLimiter refills each bucket at rps and caps it at burst (minimum 1).
// With rps 0 a voter gets burst requests and then only 429s.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute, // evict idle entries after TTL
	}
}

// getVisitor returns the bucket for key. Every 5000 lookups it first drops
// idle buckets, including the requested one, which then starts full again.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	rl.cleanupN++
	if rl.cleanupN >= 5000 {
		for k, vv := range rl.visitors {
			if now.Sub(vv.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		lim := v.limiter
		rl.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	rl.mu.Unlock()
	return lim
}

// IsRateBypass reports whether IdempotencyValidator recognised the request as
// a retry of a story post or reaction tap that already completed. Retries
// are free.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler spends one token per request. An empty bucket answers 429 with
// Retry-After: 1 and the usual error envelope (code "rate_limited") and
// bumps http_rate_limited_total for the route.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		key := rl.keyFn(c)
		lim := rl.getVisitor(key)

		if lim.Allow() {
			c.Next()
			return
		}

		httpRateLimited.WithLabelValues(routeLabel(c)).Inc()
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
