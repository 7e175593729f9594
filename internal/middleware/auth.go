package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// authTimingFloor is the minimum response time for rejected requests so that
// failures cannot be told apart by timing.
const authTimingFloor = 50 * time.Millisecond

// truncateKey returns at most the first 4 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}

	return key
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// APIKeyAuth returns Gin middleware that requires "Authorization: Bearer
// <apiKey>" on every request. An empty apiKey disables the check. Failures
// are recorded against the client IP when a guard is given.
func APIKeyAuth(apiKey string, log *logrus.Logger, guard *BruteForceGuard) gin.HandlerFunc {
	want := []byte(apiKey)

	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		got := ExtractBearerToken(c)
		if got == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			logAuthFailure(log, c, got)

			if guard != nil {
				guard.RecordFailure(c.ClientIP())
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")

			return
		}

		if guard != nil {
			guard.Reset(c.ClientIP())
		}

		c.Next()
	}
}

// ExtractBearerToken extracts the API key from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimPrefix(header, "Bearer ")
}

// logAuthFailure logs a failed authentication attempt.
func logAuthFailure(log *logrus.Logger, c *gin.Context, apiKey string) {
	log.WithFields(logrus.Fields{
		"client_ip":  c.ClientIP(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"request_id": GetRequestID(c),
		"key_prefix": truncateKey(apiKey),
	}).Warn("authentication failed: invalid api key")
}
