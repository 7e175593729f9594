// Package metrics defines Prometheus metrics for labelr.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "labelr_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelr_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelr_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	LabelsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelr_labels_written_total",
			Help: "Label writes by dataset",
		},
		[]string{"dataset"},
	)

	SamplesServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelr_samples_served_total",
			Help: "Samples returned to clients by query kind",
		},
		[]string{"kind"},
	)

	SamplesAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "labelr_samples_added_total",
			Help: "Samples inserted through the bulk endpoint",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "labelr_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	EventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "labelr_events_dropped_total",
			Help: "Events dropped because a subscriber was too slow",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		LabelsWritten, SamplesServed, SamplesAdded,
		WSConnections, EventsDropped,
	)
}
