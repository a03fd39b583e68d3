package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Document store
	// ============================================
	StoreConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recovery_backend_store_connection_status",
		Help: "Document store connection status (1=connected, 0=unavailable)",
	})

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recovery_backend_store_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "result"},
	)

	// ============================================
	// Intake
	// ============================================
	RecoverySubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recovery_backend_submissions_total",
			Help: "Total number of recovery request submissions by outcome",
		},
		[]string{"result"},
	)

	RecoveryEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recovery_backend_events_published_total",
			Help: "Total number of intake notifications published by outcome",
		},
		[]string{"result"},
	)

	// ============================================
	// HTTP
	// ============================================
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recovery_backend_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Result labels
const (
	ResultOK               = "ok"
	ResultError            = "error"
	ResultValidationFailed = "validation_failed"
	ResultUnavailable      = "unavailable"
)
