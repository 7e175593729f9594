package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	bruteForceMaxAttempts = 5
	bruteForceWindow      = 15 * time.Minute
	bruteForceLockout     = 5 * time.Minute
	bruteForceCleanup     = 60 * time.Second
	bruteForceMaxRecords  = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// BruteForceGuard counts failed authentications per client IP and locks out
// clients that exceed the threshold within the tracking window.
type BruteForceGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	log     *logrus.Logger
}

// NewBruteForceGuard creates a guard whose cleanup goroutine stops when ctx
// is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	g := &BruteForceGuard{
		records: make(map[string]*failureRecord),
		log:     log,
	}
	go g.cleanupLoop(ctx)

	return g
}

// IsBlocked reports whether client is currently locked out.
func (g *BruteForceGuard) IsBlocked(client string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[client]
	if !ok {
		return false
	}

	return !rec.lockedAt.IsZero() && time.Since(rec.lockedAt) < bruteForceLockout
}

// RecordFailure records a failed authentication attempt by client.
func (g *BruteForceGuard) RecordFailure(client string) {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[client]
	if !ok || now.Sub(rec.firstFail) > bruteForceWindow {
		if len(g.records) >= bruteForceMaxRecords && !ok {
			g.evictOldestLocked()
		}

		g.records[client] = &failureRecord{attempts: 1, firstFail: now}

		return
	}

	rec.attempts++
	if rec.attempts >= bruteForceMaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithField("client_ip", client).Warn("client locked out after repeated auth failures")
	}
}

// Reset clears failure tracking for client after a successful authentication.
func (g *BruteForceGuard) Reset(client string) {
	g.mu.Lock()
	delete(g.records, client)
	g.mu.Unlock()
}

func (g *BruteForceGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(bruteForceCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.mu.Lock()
			for k, rec := range g.records {
				expired := !rec.lockedAt.IsZero() && now.Sub(rec.lockedAt) >= bruteForceLockout
				if expired || now.Sub(rec.firstFail) >= bruteForceWindow {
					delete(g.records, k)
				}
			}
			g.mu.Unlock()
		}
	}
}

// evictOldestLocked drops the record with the oldest first failure.
// Caller must hold g.mu.
func (g *BruteForceGuard) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time

	for k, rec := range g.records {
		if oldestKey == "" || rec.firstFail.Before(oldest) {
			oldestKey, oldest = k, rec.firstFail
		}
	}

	delete(g.records, oldestKey)
}

// BruteForceMiddleware rejects requests from locked-out client IPs.
func BruteForceMiddleware(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if guard.IsBlocked(c.ClientIP()) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			return
		}

		c.Next()
	}
}
