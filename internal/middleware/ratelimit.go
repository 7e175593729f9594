// Package middleware provides HTTP middleware for labelr.
package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// maxClients is the maximum number of tracked IPs to prevent memory exhaustion.
const maxClients = 100_000

// clientLimiter is the token bucket of one client IP.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int

	// retryAfter is the whole seconds until one token refills.
	retryAfter string
}

// NewRateLimiter creates a RateLimiter allowing ratePerSec requests per
// second with the given burst. Its cleanup goroutine stops when ctx is
// cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(ratePerSec),
		burst:   burst,

		retryAfter: strconv.Itoa(int(math.Ceil(1 / ratePerSec))),
	}
	go rl.startCleanup(ctx)

	return rl
}

// startCleanup periodically evicts idle clients.
func (rl *RateLimiter) startCleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	const maxIdle = 10 * time.Minute

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, cl := range rl.clients {
				if now.Sub(cl.lastSeen) > maxIdle {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// allow reports whether ip may make a request now. ok is false when the
// client table is full.
func (rl *RateLimiter) allow(ip string) (allowed, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, exists := rl.clients[ip]
	if !exists {
		if len(rl.clients) >= maxClients {
			return false, false
		}

		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = cl
	}

	cl.lastSeen = time.Now()

	return cl.limiter.Allow(), true
}

// Handler returns Gin middleware that applies rate limiting per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// c.ClientIP() ignores X-Forwarded-For because the router trusts no proxies.
		allowed, ok := rl.allow(c.ClientIP())
		if !ok {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")
			return
		}

		if !allowed {
			c.Header("Retry-After", rl.retryAfter)
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}

		c.Next()
	}
}
