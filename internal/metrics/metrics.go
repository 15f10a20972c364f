// Package metrics collects and exposes Prometheus metrics for the auth
// core and HTTP surface.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records login outcomes and HTTP responses. It satisfies the
// auth machine's MetricsRecorder interface.
type Collector struct {
	loginSuccess *prometheus.CounterVec
	loginFailure *prometheus.CounterVec
	httpStatus   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthycare_login_success_total",
			Help: "Successful logins by provider",
		}, []string{"provider"}),
		loginFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthycare_login_failure_total",
			Help: "Failed logins by provider and failure reason",
		}, []string{"provider", "reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthycare_http_status_total",
			Help: "HTTP responses by status code",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFailure,
		c.httpStatus,
	)

	return c
}

// RecordLoginSuccess records a successful login.
func (c *Collector) RecordLoginSuccess(provider string) {
	c.loginSuccess.WithLabelValues(provider).Inc()
}

// RecordLoginFailure records a failed login.
func (c *Collector) RecordLoginFailure(provider string, reason string) {
	c.loginFailure.WithLabelValues(provider, reason).Inc()
}

// RecordHTTPStatus records a served HTTP status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
