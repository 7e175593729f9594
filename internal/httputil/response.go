// Package httputil provides shared HTTP response helpers.
package httputil

import "github.com/gin-gonic/gin"

// ErrorResponse is the JSON error envelope of every failed request.
// Fields is only set for field-level validation failures.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// RespondError writes a standardized JSON error response and aborts the request.
func RespondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: requestID(c),
	})
}

// RespondFieldErrors writes an error response carrying one message per
// rejected field and aborts the request.
func RespondFieldErrors(c *gin.Context, status int, code, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: requestID(c),
		Fields:    fields,
	})
}

func requestID(c *gin.Context) string {
	rid, exists := c.Get("request_id")
	if !exists {
		return ""
	}

	s, _ := rid.(string)

	return s
}
