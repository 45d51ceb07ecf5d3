package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests served, by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	TableAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "table_api_requests_total",
			Help: "Calls made to the remote table API, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	TableAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "table_api_request_duration_seconds",
			Help:    "Latency of remote table API calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DroppedTableRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "table_records_dropped_total",
			Help: "Fetched table records left out of every floor, by reason.",
		},
		[]string{"reason"},
	)

	MountedComponents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "screen_components_mounted",
			Help: "Currently mounted screen component instances.",
		},
		[]string{"component"},
	)
)
