package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	accountSignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_signups_total",
			Help: "Total number of account signups",
		},
	)

	accountLoginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_logins_total",
			Help: "Total number of successful logins",
		},
	)

	accountPasswordResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_password_resets_total",
			Help: "Total number of completed password resets",
		},
	)
)

// RecordHTTPRequest records HTTP request metrics.
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordSignup increments the signup counter.
func RecordSignup() {
	accountSignupsTotal.Inc()
}

// RecordLogin increments the login counter.
func RecordLogin() {
	accountLoginsTotal.Inc()
}

// RecordPasswordReset increments the password reset counter.
func RecordPasswordReset() {
	accountPasswordResetsTotal.Inc()
}

// MetricsHandler returns the Prometheus scrape handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
