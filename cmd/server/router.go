package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"todolists/internal/platform/metrics"
	"todolists/internal/platform/middleware"
	ratelimitmw "todolists/internal/ratelimit/middleware"
	"todolists/internal/todo/handler"
	"todolists/pkg/platform/httputil"
	"todolists/pkg/platform/middleware/metadata"
	"todolists/pkg/platform/middleware/requesttime"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether a backing dependency answers.
type HealthChecker func(ctx context.Context) error

type routerDeps struct {
	logger         *slog.Logger
	handler        *handler.Handler
	rateLimit      *ratelimitmw.Middleware
	httpMetrics    *metrics.Metrics
	gatherer       prometheus.Gatherer
	health         HealthChecker
	requestTimeout time.Duration
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recovery(deps.logger))
	r.Use(middleware.LatencyMiddleware(deps.httpMetrics))
	if deps.requestTimeout > 0 {
		r.Use(middleware.Timeout(deps.requestTimeout))
	}

	r.Get("/health", healthHandler(deps.health))
	r.Handle("/metrics", promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if deps.rateLimit != nil {
			r.Use(deps.rateLimit.RateLimit)
		}
		deps.handler.Register(r)
	})

	return r
}

func healthHandler(check HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
