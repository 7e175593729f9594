package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/dbpool"
	"github.com/labelr/labelr/internal/ws"
)

// StatsHandler serves the instance statistics endpoint.
type StatsHandler struct {
	repo StatsRepository
	pool *dbpool.Pool
	hub  *ws.Hub
	log  *logrus.Logger
}

// NewStatsHandler creates a StatsHandler. pool and hub may be nil.
func NewStatsHandler(repo StatsRepository, pool *dbpool.Pool, hub *ws.Hub, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{repo: repo, pool: pool, hub: hub, log: log}
}

// poolStats summarizes the database connection pool.
type poolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// statsResponse is the JSON payload returned by the stats endpoint.
type statsResponse struct {
	Datasets       int        `json:"datasets"`
	Samples        int        `json:"samples"`
	LabeledSamples int        `json:"labeled_samples"`
	LabeledPercent float64    `json:"labeled_percent"`
	EventClients   int        `json:"event_clients"`
	Pool           *poolStats `json:"pool,omitempty"`
}

// GetStats handles GET /stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	st, err := h.repo.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "stats: query", err)
		return
	}

	resp := statsResponse{
		Datasets:       st.Datasets,
		Samples:        st.Samples,
		LabeledSamples: st.LabeledSamples,
	}

	if st.Samples > 0 {
		resp.LabeledPercent = float64(st.LabeledSamples) / float64(st.Samples)
	}

	if h.hub != nil {
		resp.EventClients = h.hub.ClientCount()
	}

	if h.pool != nil {
		ps := h.pool.Stat()
		resp.Pool = &poolStats{
			TotalConns:    ps.TotalConns(),
			IdleConns:     ps.IdleConns(),
			AcquiredConns: ps.AcquiredConns(),
			MaxConns:      ps.MaxConns(),
		}
	}

	c.JSON(http.StatusOK, resp)
}
