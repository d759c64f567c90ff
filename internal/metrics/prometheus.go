package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all the Prometheus metrics for the service
type Metrics struct {
	// Request counters
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Business logic metrics
	AdViews               *prometheus.CounterVec
	SnapshotReads         *prometheus.CounterVec
	VariantDecodeFailures prometheus.Counter
	CampaignsDelivered    *prometheus.CounterVec
	DatabaseQueries       *prometheus.CounterVec
	DatabaseErrors        *prometheus.CounterVec

	// Health check metrics
	HealthCheckStatus *prometheus.GaugeVec
}

// NewPrometheusMetrics creates and registers all Prometheus metrics
func NewPrometheusMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adserver_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adserver_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "adserver_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
			[]string{"method", "endpoint"},
		),

		AdViews: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adserver_ad_views_total",
				Help: "Total number of ad detail views",
			},
			[]string{"category"},
		),

		SnapshotReads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adserver_snapshot_reads_total",
				Help: "Snapshot cache reads by outcome",
			},
			[]string{"outcome"},
		),

		VariantDecodeFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "adserver_variant_decode_failures_total",
				Help: "Total number of variant entries skipped as malformed",
			},
		),

		CampaignsDelivered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adserver_campaigns_delivered_total",
				Help: "Total number of campaigns delivered",
			},
			[]string{"residential", "category"},
		),

		DatabaseQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adserver_database_queries_total",
				Help: "Total number of database queries",
			},
			[]string{"operation", "table"},
		),

		DatabaseErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adserver_database_errors_total",
				Help: "Total number of database errors",
			},
			[]string{"operation", "error_type"},
		),

		HealthCheckStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "adserver_health_check_status",
				Help: "Health check status (1 = healthy, 0 = unhealthy)",
			},
			[]string{"check_type"},
		),
	}
}

// RecordHTTPRequest records an HTTP request with its duration and status
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordAdView records an ad detail view
func (m *Metrics) RecordAdView(category string) {
	m.AdViews.WithLabelValues(category).Inc()
}

// RecordSnapshotRead records a snapshot cache read outcome ("hit" or "miss")
func (m *Metrics) RecordSnapshotRead(outcome string) {
	m.SnapshotReads.WithLabelValues(outcome).Inc()
}

// RecordVariantDecodeFailures records variant entries skipped as malformed
func (m *Metrics) RecordVariantDecodeFailures(count int) {
	m.VariantDecodeFailures.Add(float64(count))
}

// RecordCampaignDelivery records delivered campaigns
func (m *Metrics) RecordCampaignDelivery(residential, category string, count int) {
	m.CampaignsDelivered.WithLabelValues(residential, category).Add(float64(count))
}

// RecordDatabaseQuery records a database query
func (m *Metrics) RecordDatabaseQuery(operation, table string) {
	m.DatabaseQueries.WithLabelValues(operation, table).Inc()
}

// RecordDatabaseError records a database error
func (m *Metrics) RecordDatabaseError(operation, errorType string) {
	m.DatabaseErrors.WithLabelValues(operation, errorType).Inc()
}

// SetHealthCheckStatus sets the health check status
func (m *Metrics) SetHealthCheckStatus(checkType string, healthy bool) {
	status := 0.0
	if healthy {
		status = 1.0
	}
	m.HealthCheckStatus.WithLabelValues(checkType).Set(status)
}

// IncRequestsInFlight increments the in-flight requests counter
func (m *Metrics) IncRequestsInFlight(method, endpoint string) {
	m.HTTPRequestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// DecRequestsInFlight decrements the in-flight requests counter
func (m *Metrics) DecRequestsInFlight(method, endpoint string) {
	m.HTTPRequestsInFlight.WithLabelValues(method, endpoint).Dec()
}
