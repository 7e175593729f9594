// Package api provides the HTTP handlers of the labelr server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/db"
	"github.com/labelr/labelr/internal/dbpool"
	"github.com/labelr/labelr/internal/ws"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	pool      *dbpool.Pool
	hub       *ws.Hub
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. pool and hub may be nil.
func NewHealthHandler(pool *dbpool.Pool, hub *ws.Hub, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		pool:      pool,
		hub:       hub,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	EventClients  int     `json:"event_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "connected",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.pool.HealthCheck(ctx); err != nil {
			resp.Database = "disconnected"
		}
	} else {
		resp.Database = "not_configured"
	}

	if h.hub != nil {
		resp.EventClients = h.hub.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /ready. It checks database connectivity and that
// every migration this binary ships has been applied.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{
		"database": "ok",
		"schema":   "ok",
	}

	if h.pool == nil {
		checks["database"] = "not_configured"
		checks["schema"] = "unknown"
		c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "not_ready", Checks: checks})

		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status, statusCode := "ready", http.StatusOK

	if err := h.pool.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Error("readiness: database health check failed")
		checks["database"] = "error"
		checks["schema"] = "unknown"
		status, statusCode = "not_ready", http.StatusServiceUnavailable
	} else if err := h.checkSchema(ctx); err != nil {
		h.log.WithError(err).Error("readiness: schema check failed")
		checks["schema"] = "error"
		status, statusCode = "not_ready", http.StatusServiceUnavailable
	}

	c.JSON(statusCode, readinessResponse{Status: status, Checks: checks})
}

func (h *HealthHandler) checkSchema(ctx context.Context) error {
	applied, err := db.AppliedVersion(ctx, h.pool)
	if err != nil {
		return err
	}

	if want := int64(db.SchemaVersion()); applied < want {
		return fmt.Errorf("schema version %d behind expected %d", applied, want)
	}

	return nil
}
