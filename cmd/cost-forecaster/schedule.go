package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/cost-forecaster/cmd/helpers"
	"github.com/operator-framework/cost-forecaster/pkg/cron"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "runs the forecast on a cron schedule and serves metrics",
	RunE:  runSchedule,
}

func runSchedule(_ *cobra.Command, _ []string) error {
	if err := cfg.ValidateSchedule(); err != nil {
		return err
	}
	j, err := setupJob(logger, cfg)
	if err != nil {
		return err
	}

	params := cfg.Params()
	if err := params.Validate(); err != nil {
		return err
	}
	scheduler, err := cron.New(logger, cfg.Schedule, func(ctx context.Context) error {
		_, err := j.Run(ctx, params)
		return err
	})
	if err != nil {
		return err
	}

	ctx := helpers.SetupSignals(logger)
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: newRouter(logger, scheduler, prometheus.DefaultGatherer),
	}
	srvErr := make(chan error, 1)
	go func() {
		logger.Infof("serving metrics on %s", cfg.ListenAddr)
		srvErr <- srv.ListenAndServe()
	}()

	scheduler.Start(ctx)
	logger.Infof("forecasting to %s on schedule %q", describe(params), cfg.Schedule)

	select {
	case <-ctx.Done():
	case err = <-srvErr:
		logger.WithError(err).Error("metrics server stopped")
	}

	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.WithError(shutdownErr).Warn("could not shut down metrics server")
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type requestLogger struct {
	log.FieldLogger
}

func (l *requestLogger) Print(v ...interface{}) {
	l.FieldLogger.Debug(v...)
}

func newRouter(logger log.FieldLogger, scheduler *cron.Scheduler, gatherer prometheus.Gatherer) chi.Router {
	router := chi.NewRouter()
	logger = logger.WithField("component", "api")
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: &requestLogger{logger}, NoColor: true}))
	router.Use(middleware.Recoverer)

	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(scheduler.Status()); err != nil {
			logger.WithError(err).Warn("could not write health status")
		}
	})
	return router
}
