package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/httputil"
	"github.com/labelr/labelr/internal/labelschema"
	"github.com/labelr/labelr/internal/metrics"
	"github.com/labelr/labelr/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeInternalError   = "internal_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeValidationError = "validation_error"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps a service error to its HTTP response. Unknown
// errors are logged with op and reported as 500.
func respondServiceError(c *gin.Context, log *logrus.Logger, op string, err error) {
	var fields labelschema.FieldErrors

	switch {
	case errors.As(err, &fields):
		metrics.ErrorsTotal.WithLabelValues(ErrCodeValidationError).Inc()
		httputil.RespondFieldErrors(c, http.StatusUnprocessableEntity, ErrCodeValidationError,
			"invalid label definitions", fields)
	case errors.Is(err, models.ErrInvalidLabel):
		respondError(c, http.StatusUnprocessableEntity, ErrCodeValidationError, err.Error())
	case errors.Is(err, models.ErrDatasetNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "dataset not found")
	case errors.Is(err, models.ErrSampleNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "sample not found")
	case errors.Is(err, models.ErrDuplicateKey):
		respondError(c, http.StatusConflict, ErrCodeConflict, "duplicate label name")
	default:
		log.WithError(err).Error(op)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
