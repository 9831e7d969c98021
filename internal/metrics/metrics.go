// Package metrics exposes the Prometheus collectors recorded by the feedback
// store and the background jobs.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

type Metrics struct {
	registry *prometheus.Registry

	storeOperations *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	jobsProcessed   *prometheus.CounterVec
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the process wide collectors, which also carry the Go
// runtime and process collectors.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		defaultMetrics = New(reg)
	})
	return defaultMetrics
}

// New registers a fresh set of collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		storeOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_store_operations_total",
			Help: "Feedback store operations by outcome",
		}, []string{"operation", "outcome"}),
		storeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedback_store_operation_duration_seconds",
			Help:    "Feedback store operation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		jobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_jobs_processed_total",
			Help: "Background feedback tasks by outcome",
		}, []string{"task", "outcome"}),
	}
}

// ObserveStoreOperation records one finished store call.
func (m *Metrics) ObserveStoreOperation(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	m.storeOperations.WithLabelValues(operation, outcome(err)).Inc()
}

// ObserveJob records one processed task.
func (m *Metrics) ObserveJob(task, outcome string) {
	if m == nil {
		return
	}
	m.jobsProcessed.WithLabelValues(task, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
