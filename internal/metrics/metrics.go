// Package metrics holds the Prometheus instrumentation for the API.
// Everything is registered on the default registry via promauto and served
// by promhttp from cmd/api.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters and histograms the services and the HTTP
// middleware record into. Construct once in main and inject; a nil *Metrics
// is safe and records nothing, which keeps unit tests free of registry setup.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	IssuesCreated     prometheus.Counter
	NotificationsSent prometheus.Counter
}

// New registers all API metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "communityalert_http_requests_total",
			Help: "Total HTTP requests handled",
		}, []string{"method", "path", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "communityalert_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "path"}),
		IssuesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "communityalert_issues_created_total",
			Help: "Total issues created",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "communityalert_notifications_sent_total",
			Help: "Total notifications dispatched",
		}),
	}
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}

// IssueCreated records a successful issue creation.
func (m *Metrics) IssueCreated() {
	if m == nil {
		return
	}
	m.IssuesCreated.Inc()
}

// NotificationSent records a successfully persisted notification.
func (m *Metrics) NotificationSent() {
	if m == nil {
		return
	}
	m.NotificationsSent.Inc()
}
