package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/dbpool"
	"github.com/labelr/labelr/internal/middleware"
	"github.com/labelr/labelr/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Hub         *ws.Hub
	Datasets    DatasetService
	Samples     SampleService
	Export      ExportService
	Stats       StatsRepository
	CORSOrigins []string
	Version     string
	APIKey      string
	RateLimit   float64
	RateBurst   int
}

// maxBodySize caps request bodies; bulk sample inserts are the largest.
const maxBodySize = 32 << 20

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, deps.RateLimit, deps.RateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Hub, log, deps.Version)
	datasets := NewDatasetHandler(deps.Datasets, deps.Export, log)
	samples := NewSampleHandler(deps.Samples, log)
	events := NewEventHandler(ctx, deps.Datasets, deps.Hub, deps.CORSOrigins, log)
	stats := NewStatsHandler(deps.Stats, deps.Pool, deps.Hub, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	guard := middleware.NewBruteForceGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(guard))
	api.Use(middleware.APIKeyAuth(deps.APIKey, log, guard))

	api.GET("/datasets", datasets.List)
	api.POST("/datasets", datasets.Create)
	api.GET("/datasets/:id", datasets.Get)
	api.DELETE("/datasets/:id", datasets.Delete)
	api.GET("/datasets/:id/export", datasets.Export)
	api.GET("/datasets/:id/events", events.Subscribe)

	api.GET("/datasets/:id/samples", samples.List)
	api.POST("/datasets/:id/samples", samples.Add)
	api.GET("/datasets/:id/samples/:sample_id", samples.Get)
	api.PUT("/datasets/:id/samples/:sample_id", samples.PutLabels)

	api.GET("/stats", stats.GetStats)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
