package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	submissionsTotal    *prometheus.CounterVec
	chatRequestsTotal   *prometheus.CounterVec
	chatEvidenceTotal   *prometheus.CounterVec
	chatEvidenceSources *prometheus.HistogramVec
	chatDuration        *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "horizon",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "horizon",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "horizon",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	submissionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "horizon",
			Subsystem: "ingest",
			Name:      "submissions_total",
			Help:      "Total evidence submissions by outcome.",
		},
		[]string{"service", "outcome"},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "horizon",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total chat turns served.",
		},
		[]string{"service"},
	)
	chatEvidenceTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "horizon",
			Subsystem: "chat",
			Name:      "evidence_context_total",
			Help:      "Chat turns by whether local evidence backed the reply.",
		},
		[]string{"service", "result"},
	)
	chatEvidenceSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "horizon",
			Subsystem: "chat",
			Name:      "evidence_sources",
			Help:      "Distribution of evidence sources cited per chat turn.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "horizon",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat turn duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		submissionsTotal,
		chatRequestsTotal,
		chatEvidenceTotal,
		chatEvidenceSources,
		chatDuration,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		submissionsTotal:    submissionsTotal,
		chatRequestsTotal:   chatRequestsTotal,
		chatEvidenceTotal:   chatEvidenceTotal,
		chatEvidenceSources: chatEvidenceSources,
		chatDuration:        chatDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &metricsRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/artifacts/"):
		return "/api/artifacts/{artifact_id}"
	case strings.HasPrefix(path, "/api/admin/artifacts/"):
		return "/api/admin/artifacts/{artifact_id}"
	default:
		return path
	}
}

// RecordSubmission tallies an ingest outcome: stored, duplicate, irrelevant,
// or error. Nil-safe so handlers can run without a metrics sink.
func (m *HTTPServerMetrics) RecordSubmission(service, outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.submissionsTotal.WithLabelValues(service, outcome).Inc()
}

// RecordChatObservation tallies one chat turn and whether local evidence
// backed the reply.
func (m *HTTPServerMetrics) RecordChatObservation(service string, sourceCount int, duration time.Duration) {
	if m == nil {
		return
	}
	m.chatRequestsTotal.WithLabelValues(service).Inc()
	m.chatEvidenceSources.WithLabelValues(service).Observe(float64(sourceCount))
	m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())

	if sourceCount > 0 {
		m.chatEvidenceTotal.WithLabelValues(service, "hit").Inc()
		return
	}
	m.chatEvidenceTotal.WithLabelValues(service, "miss").Inc()
}

type metricsRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *metricsRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *metricsRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *metricsRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
