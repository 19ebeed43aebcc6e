package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors recorded by the lifecycle hooks.
type Metrics struct {
	registry        *prometheus.Registry
	reconciliations *prometheus.CounterVec
	operations      *prometheus.CounterVec
	duration        prometheus.Histogram
	interactions    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reconciliations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatlist_reconciliations_total",
				Help: "Total number of list updates reconciled",
			},
			[]string{"list"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatlist_operations_total",
				Help: "Transition operations produced, by kind",
			},
			[]string{"list", "kind"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatlist_reconcile_duration_seconds",
				Help:    "Time spent reconciling and persisting a list update",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatlist_interactions_total",
				Help: "Interaction events dispatched, by type",
			},
			[]string{"type"},
		),
	}
	m.registry.MustRegister(m.reconciliations, m.operations, m.duration, m.interactions)
	return m
}

// Registry exposes the underlying registry, e.g. to add process collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReconcile: func(ctx context.Context, e *domain.ReconcileEvent) {
			m.reconciliations.WithLabelValues(e.ListID).Inc()
			m.operations.WithLabelValues(e.ListID, "delete").Add(float64(e.Counts.Deleted))
			m.operations.WithLabelValues(e.ListID, "insert").Add(float64(e.Counts.Inserted))
			m.operations.WithLabelValues(e.ListID, "move").Add(float64(e.Counts.Moved))
			m.operations.WithLabelValues(e.ListID, "update").Add(float64(e.Counts.Updated))
			m.duration.Observe(e.Duration.Seconds())
		},
		OnInteraction: func(ctx context.Context, e *domain.InteractionEvent) {
			m.interactions.WithLabelValues(string(e.Type)).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
