// Package metrics defines Prometheus metrics for the Trade Me client and the
// watch daemon.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trademe"

// HTTP server metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by the daemon in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests served by the daemon.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 when the last liveness check succeeded.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 when the last readiness check succeeded.",
	})
)

// Trade Me API metrics.
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of Trade Me API calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of Trade Me API calls.",
	}, []string{"endpoint", "method", "status"})

	APIRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_retries_total",
		Help:      "Total number of retried Trade Me API calls.",
	}, []string{"endpoint"})

	APIQuotaUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "api_quota_usage",
		Help:      "Calls made within the current quota window.",
	})

	APIQuotaExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_quota_exhausted_total",
		Help:      "Total number of calls refused because the quota was exhausted.",
	})
)

// Watch metrics.
var (
	WatchPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watch_polls_total",
		Help:      "Total number of saved-search polls.",
	}, []string{"search"})

	WatchPollErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watch_poll_errors_total",
		Help:      "Total number of failed saved-search polls.",
	}, []string{"search"})

	WatchNewListingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watch_new_listings_total",
		Help:      "Total number of newly seen listings.",
	}, []string{"search"})

	WatchPollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "watch_poll_duration_seconds",
		Help:      "Duration of a full poll cycle in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Notification metrics.
var (
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications delivered.",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})
)

// Recorder feeds Connection instrumentation events into the API metrics.
// It satisfies trademe.Metrics.
type Recorder struct{}

// NewRecorder returns a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ObserveRequest records one API call attempt.
func (*Recorder) ObserveRequest(endpoint, method string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	if status == 0 {
		code = "error"
	}
	APIRequestDuration.WithLabelValues(endpoint, method, code).Observe(elapsed.Seconds())
	APIRequestsTotal.WithLabelValues(endpoint, method, code).Inc()
}

// ObserveRetry records a retried call.
func (*Recorder) ObserveRetry(endpoint string) {
	APIRetriesTotal.WithLabelValues(endpoint).Inc()
}

// ObserveQuota records quota usage.
func (*Recorder) ObserveQuota(used int64, exhausted bool) {
	APIQuotaUsage.Set(float64(used))
	if exhausted {
		APIQuotaExhaustedTotal.Inc()
	}
}
