package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the to-do list module.
// Tracks creation/deletion counts and data access latency per operation.
type Metrics struct {
	ListsCreated    prometheus.Counter
	ListsDeleted    prometheus.Counter
	ItemsCreated    prometheus.Counter
	ItemsDeleted    prometheus.Counter
	StoreOpDuration *prometheus.HistogramVec
}

// New creates the module metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ListsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "todolists_lists_created_total",
			Help: "Total number of lists created",
		}),
		ListsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "todolists_lists_deleted_total",
			Help: "Total number of lists deleted",
		}),
		ItemsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "todolists_items_created_total",
			Help: "Total number of items appended to lists",
		}),
		ItemsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "todolists_items_deleted_total",
			Help: "Total number of items removed from lists",
		}),
		StoreOpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "todolists_store_operation_duration_seconds",
			Help:    "Duration of document store operations by operation and outcome",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation", "outcome"}),
	}
}

// IncrementListsCreated records a successful list creation.
func (m *Metrics) IncrementListsCreated() {
	m.ListsCreated.Inc()
}

// IncrementListsDeleted records a list removal.
func (m *Metrics) IncrementListsDeleted() {
	m.ListsDeleted.Inc()
}

// IncrementItemsCreated records an item append.
func (m *Metrics) IncrementItemsCreated() {
	m.ItemsCreated.Inc()
}

// IncrementItemsDeleted records an item removal.
func (m *Metrics) IncrementItemsDeleted() {
	m.ItemsDeleted.Inc()
}

// ObserveStoreOperation records the duration of one store call.
// Call with time.Now() taken before the call.
func (m *Metrics) ObserveStoreOperation(operation, outcome string, start time.Time) {
	m.StoreOpDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
