// Command labelr serves the labelr REST API, the dataset event stream and
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/labelr/labelr/internal/api"
	"github.com/labelr/labelr/internal/config"
	"github.com/labelr/labelr/internal/db"
	"github.com/labelr/labelr/internal/db/migrations"
	"github.com/labelr/labelr/internal/dbpool"
	"github.com/labelr/labelr/internal/service"
	"github.com/labelr/labelr/internal/store"
	"github.com/labelr/labelr/internal/ws"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("labelr exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	log.SetLevel(level)

	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), int32(cfg.DBMaxConns)) //nolint:gosec // bounded to 200 by config validation.
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	base := store.Base{Pool: pool, Log: log}
	datasetStore := store.NewDatasetStore(base)
	sampleStore := store.NewSampleStore(base)

	hub := ws.NewHub(log)

	if err := db.NewNotifyBridge(log, pool, hub).Start(ctx); err != nil {
		return err
	}

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Hub:         hub,
		Datasets:    service.NewDatasetService(datasetStore, log),
		Samples:     service.NewSampleService(sampleStore, datasetStore, log),
		Export:      service.NewExportService(&exportStore{datasetStore, sampleStore}),
		Stats:       sampleStore,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
		APIKey:      cfg.APIKey.Value(),
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
	})

	if !cfg.AuthEnabled() {
		log.Warn("API_KEY is not set; the API accepts unauthenticated requests")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "version": config.Version}).Info("labelr listening")
		return serve(srv)
	})

	g.Go(func() error {
		log.WithField("addr", metricsSrv.Addr).Info("metrics listening")
		return serve(metricsSrv)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		hub.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving %s: %w", srv.Addr, err)
	}

	return nil
}

// exportStore joins the dataset schema lookup with the labeled-sample scan.
type exportStore struct {
	*store.DatasetStore
	*store.SampleStore
}
