package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured error response from the labelr API.
// Fields is set when the server rejected individual fields.
type APIError struct {
	StatusCode int               `json:"-"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	RequestID  string            `json:"request_id,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("labelr: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}

	return fmt.Sprintf("labelr: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func statusOf(err error) int {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode
	}

	return 0
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsConflict returns true if the error is a 409 conflict.
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

// IsValidation returns true if the server rejected the request content.
func IsValidation(err error) bool {
	var e *APIError
	if !errors.As(err, &e) {
		return false
	}

	return e.StatusCode == http.StatusUnprocessableEntity || e.Code == "validation_error"
}

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool {
	return statusOf(err) == http.StatusTooManyRequests
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}

	return apiErr
}
