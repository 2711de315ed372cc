package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"doc-summarizer/internal/app"
)

// MetricsHandler exposes the dependency registry in Prometheus text format.
func MetricsHandler(deps app.Deps) http.Handler {
	return promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
}

// ServeHealth runs the health and metrics server for a worker until ctx is done.
func ServeHealth(ctx context.Context, deps app.Deps, service string) error {
	r := chi.NewRouter()
	r.Use(Recoverer(deps.Log))
	r.Get("/healthz", HealthHandler(deps))
	r.Handle("/metrics", MetricsHandler(deps))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.HealthPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	deps.Log.Info("health server listening", "service", service, "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
