package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_mock_http_requests_total",
		Help: "Total number of HTTP requests by route template, method and status.",
	},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "companion_mock_http_request_duration_seconds",
		Help:    "HTTP request latency by route template.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"route"},
	)

	EntitiesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_mock_entities_created_total",
		Help: "Total number of records created through the API.",
	},
		[]string{"collection"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_mock_status_transitions_total",
		Help: "Status transitions applied, and refused, per entity kind.",
	},
		[]string{"collection", "to", "result"},
	)

	LegacyForwardErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companion_mock_legacy_forward_errors_total",
		Help: "Total number of legacy upstream requests that failed.",
	})
)
