package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsRejected prometheus.Counter
	LimiterErrors    prometheus.Counter
	FallbackActive   prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "todolists_ratelimit_rejected_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		LimiterErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "todolists_ratelimit_limiter_errors_total",
			Help: "Total number of rate limit checks that failed against the primary store",
		}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "todolists_ratelimit_fallback_active",
			Help: "1 while limits are served from the in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementRejected() {
	m.RequestsRejected.Inc()
}

func (m *Metrics) IncrementLimiterErrors() {
	m.LimiterErrors.Inc()
}

func (m *Metrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}
