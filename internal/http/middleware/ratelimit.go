// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the request rate limiter: per-identity token buckets
// held in memory, keyed by user ID when known and client IP otherwise. The
// limiter exists to cap provider spend, so read-only requests skip it
// entirely; they are answered from the content store and cost nothing.
//
// The limiter is process-local. A horizontally scaled deployment needs a
// shared backend (Redis or similar) to enforce a global budget; this one
// covers the single-container setups the service actually runs in.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CodeRateLimited is the machine-readable code of the 429 error envelope.
const CodeRateLimited = "rate_limited"

// identityFunc maps a request to the stable string keying its bucket.
type identityFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by "user:<id>" when the Identity middleware
// has put a userID in the context, falling back to "ip:<addr>". The
// prefixes keep the two namespaces from colliding.
func KeyByUserOrIP() identityFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get(userIDKey); ok {
			if s, ok := v.(string); ok && s != "" {
				return "user:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out per-key token buckets on demand. Idle buckets are
// evicted after ttl during lookups, so the map stays bounded without a
// background goroutine. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn identityFunc

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	cleanupN uint64
}

// evictEvery is the number of lookups between idle-bucket sweeps.
const evictEvery = 5000

// NewRateLimiter builds a limiter replenishing rps tokens per second with
// the given burst size (values below 1 become 1).
func NewRateLimiter(rps float64, burst int, keyFn identityFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// getVisitor returns the bucket for key, creating it if absent. The idle
// sweep runs before the lookup so a stale bucket is evicted even when it is
// the one being fetched.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= evictEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// IsRateBypass reports whether the request skips limiting. GET, HEAD, and
// OPTIONS never reach a provider, so they pass through.
func IsRateBypass(c *gin.Context) bool {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Handler enforces the limit. Denied requests get a 429 with the standard
// error envelope and a minimal Retry-After.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		if rl.getVisitor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       CodeRateLimited,
			"message":    "rate limit exceeded",
		})
	}
}
