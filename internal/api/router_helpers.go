package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/middleware"
	"github.com/labelr/labelr/internal/models"
)

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid := middleware.GetRequestID(c); rid != "" {
			fields["request_id"] = rid
		}
		if id := c.Param("id"); id != "" {
			fields["dataset_id"] = id
		}
		log.WithFields(fields).Info("request")
	}
}

// Pagination limits for sample queries.
const (
	defaultSampleLimit  = 1
	maxPaginationLimit  = 1000
	maxPaginationOffset = 10_000_000
)

// parseSampleQuery reads offset, limit and labeled from the query string.
// Missing values take their defaults; malformed ones are an error.
func parseSampleQuery(c *gin.Context) (models.SampleQuery, error) {
	q := models.SampleQuery{Limit: defaultSampleLimit}

	if s := c.Query("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 || v > maxPaginationOffset {
			return q, fmt.Errorf("offset must be an integer between 0 and %d", maxPaginationOffset)
		}

		q.Offset = v
	}

	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > maxPaginationLimit {
			return q, fmt.Errorf("limit must be an integer between 1 and %d", maxPaginationLimit)
		}

		q.Limit = v
	}

	if s := c.Query("labeled"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("labeled must be true or false")
		}

		q.Labeled = &v
	}

	return q, nil
}

// validatePathID checks that a path parameter ID is non-empty and within length limits.
func validatePathID(id string) error {
	if id == "" {
		return fmt.Errorf("id must not be empty")
	}

	if len(id) > 255 {
		return fmt.Errorf("id exceeds maximum length of 255")
	}

	return nil
}

// pathIDs validates the named path parameters and returns their values in
// order. It responds with 400 and returns false when one is invalid.
func pathIDs(c *gin.Context, names ...string) ([]string, bool) {
	ids := make([]string, len(names))

	for i, name := range names {
		ids[i] = c.Param(name)
		if err := validatePathID(ids[i]); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, name+": "+err.Error())
			return nil, false
		}
	}

	return ids, true
}
