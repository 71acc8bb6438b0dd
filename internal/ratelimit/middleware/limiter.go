package middleware

import (
	"context"
	"time"

	"todolists/internal/ratelimit/metrics"
	"todolists/internal/ratelimit/models"
	"todolists/pkg/platform/circuit"
)

// BucketStore counts requests per key within a window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Limiter enforces the per-client-IP limit against a primary bucket store.
// With a fallback configured, repeated primary failures open a circuit and
// checks are answered by the fallback until the primary recovers.
type Limiter struct {
	primary  BucketStore
	fallback BucketStore
	limit    models.Limit
	breaker  *circuit.Breaker
	metrics  *metrics.Metrics
}

type LimiterOption func(*Limiter)

// WithFallback sets the store used while the circuit is open.
func WithFallback(store BucketStore) LimiterOption {
	return func(l *Limiter) {
		l.fallback = store
	}
}

func WithLimiterMetrics(m *metrics.Metrics) LimiterOption {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// NewLimiter creates a Limiter enforcing limit on primary.
func NewLimiter(primary BucketStore, limit models.Limit, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		primary: primary,
		limit:   limit,
		breaker: circuit.New("ratelimit-primary"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) CheckIPRateLimit(ctx context.Context, ip string) (*models.RateLimitResult, error) {
	key := models.NewIPKey(ip)
	result, err := l.primary.Allow(ctx, key, l.limit.RequestsPerWindow, l.limit.Window)
	if err == nil {
		if _, change := l.breaker.RecordSuccess(); change.Closed {
			l.setFallbackActive(false)
		}
		return result, nil
	}

	if l.metrics != nil {
		l.metrics.IncrementLimiterErrors()
	}
	useFallback, change := l.breaker.RecordFailure()
	if !useFallback || l.fallback == nil {
		return nil, err
	}
	if change.Opened {
		l.setFallbackActive(true)
	}
	result, fbErr := l.fallback.Allow(ctx, key, l.limit.RequestsPerWindow, l.limit.Window)
	if fbErr != nil {
		return nil, fbErr
	}
	result.Degraded = true
	return result, nil
}

func (l *Limiter) setFallbackActive(active bool) {
	if l.metrics != nil {
		l.metrics.SetFallbackActive(active)
	}
}
