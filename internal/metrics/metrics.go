package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// NotificationOutcomes counts side-effect results by notification type and outcome.
	NotificationOutcomes *prometheus.CounterVec
	// NotificationFailures counts swallowed notification bookkeeping failures.
	NotificationFailures *prometheus.CounterVec

	RateLimitExceededTotal prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide collectors, registering them on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "route"},
			),
			NotificationOutcomes: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notification_side_effects_total",
					Help: "Notification side effects by type and outcome",
				},
				[]string{"type", "outcome"},
			),
			NotificationFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notification_side_effect_failures_total",
					Help: "Notification bookkeeping failures that were logged and swallowed",
				},
				[]string{"type", "op"},
			),
			RateLimitExceededTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
			),
		}
	})
	return instance
}
