package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"todolists/internal/platform/config"
	"todolists/internal/platform/httpserver"
	"todolists/internal/platform/logger"
	"todolists/internal/platform/metrics"
	"todolists/internal/platform/mongodb"
	"todolists/internal/platform/redis"
	rlmetrics "todolists/internal/ratelimit/metrics"
	ratelimitmw "todolists/internal/ratelimit/middleware"
	rlmodels "todolists/internal/ratelimit/models"
	"todolists/internal/ratelimit/store/bucket"
	"todolists/internal/todo/handler"
	todometrics "todolists/internal/todo/metrics"
	"todolists/internal/todo/service"
	"todolists/internal/todo/store"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.Debug)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := newTracerProvider(cfg.Server.Debug, os.Stderr)
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tp)
	defer closeWithTimeout(log, "tracer", tp.Shutdown)

	reg := prometheus.DefaultRegisterer
	todoMetrics := todometrics.New(reg)

	var (
		todoStore service.Store
		health    HealthChecker
	)
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		todoStore = store.NewInMemory()
	default:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
		client, err := mongodb.New(connectCtx, cfg.Mongo)
		cancel()
		if err != nil {
			return fmt.Errorf("connect to mongodb: %w", err)
		}
		defer closeWithTimeout(log, "mongodb", client.Close)

		log.Info("connected to mongodb", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		todoStore = store.NewMongo(client.Collection(cfg.Mongo.Collection), store.WithMetrics(todoMetrics))
		health = client.Health
	}

	svc := service.New(todoStore, service.WithLogger(log), service.WithMetrics(todoMetrics))

	rateLimit, closeRedis, err := newRateLimit(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	if closeRedis != nil {
		defer closeRedis()
	}

	router := newRouter(routerDeps{
		logger:         log,
		handler:        handler.New(svc, log),
		rateLimit:      rateLimit,
		httpMetrics:    metrics.New(reg),
		gatherer:       prometheus.DefaultGatherer,
		health:         health,
		requestTimeout: cfg.Server.RequestTimeout,
	})
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting todolists", "addr", cfg.Server.Addr, "store", cfg.Store, "debug", cfg.Server.Debug)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newRateLimit builds the /api rate limiting middleware. Redis backs the
// limiter when configured, with the in-memory store as fallback.
func newRateLimit(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*ratelimitmw.Middleware, func(), error) {
	rlMetrics := rlmetrics.New(reg)
	limit := rlmodels.Limit{RequestsPerWindow: cfg.RateLimit.RequestsPerMinute, Window: time.Minute}
	if !limit.Enabled() {
		return ratelimitmw.New(nil, log, ratelimitmw.WithDisabled(true)), nil, nil
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	var limiter *ratelimitmw.Limiter
	var closeFn func()
	if redisClient != nil {
		log.Info("rate limiting backed by redis", "requests_per_minute", limit.RequestsPerWindow)
		limiter = ratelimitmw.NewLimiter(bucket.NewRedis(redisClient),
			limit,
			ratelimitmw.WithFallback(bucket.New()),
			ratelimitmw.WithLimiterMetrics(rlMetrics),
		)
		closeFn = func() {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis client", "error", err)
			}
		}
	} else {
		log.Info("rate limiting in memory", "requests_per_minute", limit.RequestsPerWindow)
		limiter = ratelimitmw.NewLimiter(bucket.New(), limit, ratelimitmw.WithLimiterMetrics(rlMetrics))
	}

	return ratelimitmw.New(limiter, log, ratelimitmw.WithMetrics(rlMetrics)), closeFn, nil
}

func closeWithTimeout(log *slog.Logger, name string, closeFn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := closeFn(ctx); err != nil {
		log.Warn("failed to close client", "client", name, "error", err)
	}
}
