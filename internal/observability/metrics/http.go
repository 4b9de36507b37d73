package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics tracks request traffic plus pipeline-stage outcomes for
// the API service.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	extractionsTotal   *prometheus.CounterVec
	processingsTotal   *prometheus.CounterVec
	stageDuration      *prometheus.HistogramVec
	artifactBytesTotal prometheus.Counter
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lrp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lrp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "lrp",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lrp",
			Subsystem: "pipeline",
			Name:      "extractions_total",
			Help:      "Extraction stage runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	processingsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lrp",
			Subsystem: "pipeline",
			Name:      "processings_total",
			Help:      "Processing stage runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lrp",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds, gateway call included.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 240},
		},
		[]string{"service", "stage"},
	)
	artifactBytesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "lrp",
			Subsystem:   "pipeline",
			Name:        "artifact_bytes_total",
			Help:        "Total artifact bytes streamed to callers.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		extractionsTotal,
		processingsTotal,
		stageDuration,
		artifactBytesTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		extractionsTotal:   extractionsTotal,
		processingsTotal:   processingsTotal,
		stageDuration:      stageDuration,
		artifactBytesTotal: artifactBytesTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) ObserveRequest(service, method, path string, status int, duration time.Duration) {
	m.requestTotal.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RequestStarted()  { m.requestInFlight.Inc() }
func (m *HTTPServerMetrics) RequestFinished() { m.requestInFlight.Dec() }

func (m *HTTPServerMetrics) ObserveExtraction(service, outcome string) {
	m.extractionsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) ObserveProcessing(service, outcome string) {
	m.processingsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) ObserveStageDuration(service, stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(service, stage).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) AddArtifactBytes(n int64) {
	if n > 0 {
		m.artifactBytesTotal.Add(float64(n))
	}
}
