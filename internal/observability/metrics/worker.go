package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	syncTotal    *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	syncInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	syncTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "horizon",
			Subsystem: "worker",
			Name:      "artifact_sync_total",
			Help:      "Total knowledge-store sync attempts by status.",
		},
		[]string{"service", "status"},
	)
	syncDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "horizon",
			Subsystem: "worker",
			Name:      "artifact_sync_duration_seconds",
			Help:      "Knowledge-store sync duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	syncInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "horizon",
			Subsystem: "worker",
			Name:      "artifact_sync_in_flight",
			Help:      "Number of in-flight knowledge-store syncs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(syncTotal, syncDuration, syncInFlight)

	return &WorkerMetrics{
		registry:     registry,
		syncTotal:    syncTotal,
		syncDuration: syncDuration,
		syncInFlight: syncInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartSync() {
	if m == nil {
		return
	}
	m.syncInFlight.Inc()
}

func (m *WorkerMetrics) FinishSync(service string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.syncInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.syncTotal.WithLabelValues(service, status).Inc()
	m.syncDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
