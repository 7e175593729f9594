package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key for the canonical request ID.
	RequestIDKey = "request_id"

	// ClientRequestIDKey holds the X-Request-ID a client sent, if any.
	ClientRequestIDKey = "client_request_id"

	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// maxClientRequestID bounds how much of a client ID ends up in the logs.
	maxClientRequestID = 64
)

// RequestID stamps every request with a server-generated UUID, echoes it in
// X-Request-ID and stores it for handlers and error envelopes. A client's own
// X-Request-ID is kept under ClientRequestIDKey so a labeler's CLI trace can
// be matched with the server log, but it never replaces the server ID.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()

		if clientID := sanitizeClientID(c.GetHeader(RequestIDHeader)); clientID != "" {
			log.WithFields(logrus.Fields{
				RequestIDKey:       id,
				ClientRequestIDKey: clientID,
				"path":             c.Request.URL.Path,
			}).Debug("client request id mapped to server id")
			c.Set(ClientRequestIDKey, clientID)
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// sanitizeClientID keeps printable ASCII only and truncates long values.
func sanitizeClientID(raw string) string {
	out := make([]byte, 0, min(len(raw), maxClientRequestID))

	for i := 0; i < len(raw) && len(out) < maxClientRequestID; i++ {
		if b := raw[i]; b > 0x20 && b < 0x7f {
			out = append(out, b)
		}
	}

	return string(out)
}
