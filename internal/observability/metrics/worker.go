package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks the audit worker's event consumption.
type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lrp",
			Subsystem: "worker",
			Name:      "events_total",
			Help:      "Finalization events consumed by outcome.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"outcome"},
	)
	registry.MustRegister(eventsTotal)

	return &WorkerMetrics{
		registry:    registry,
		eventsTotal: eventsTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveEvent(outcome string) {
	m.eventsTotal.WithLabelValues(outcome).Inc()
}
