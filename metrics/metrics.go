// Package metrics provides Prometheus instrumentation for the risk engine.
package metrics

import (
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ProviderRequests counts upstream provider calls by chain family, host and outcome.
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scamscan",
			Name:      "provider_requests_total",
			Help:      "Upstream provider calls by family, provider host, and outcome.",
		},
		[]string{"family", "provider", "outcome"},
	)

	// RenderAttempts counts page fetches by path (light, headless) and outcome.
	RenderAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scamscan",
			Name:      "render_attempts_total",
			Help:      "Page fetch attempts by path and outcome.",
		},
		[]string{"path", "outcome"},
	)

	// RenderRejected counts callers that gave up waiting for the render slot.
	RenderRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scamscan",
			Name:      "render_rejected_total",
			Help:      "Headless renders rejected because the render slot stayed busy.",
		},
	)

	// RenderQueueWait observes how long callers waited for the render slot.
	RenderQueueWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "scamscan",
			Name:      "render_queue_wait_seconds",
			Help:      "Time spent waiting for the headless render slot.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	// ChecksTotal counts completed checks by input type and verdict.
	ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scamscan",
			Name:      "checks_total",
			Help:      "Completed risk checks by input type and verdict.",
		},
		[]string{"type", "verdict"},
	)

	// CheckDuration observes end-to-end check latency by input type.
	CheckDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scamscan",
			Name:      "check_duration_seconds",
			Help:      "Risk check duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 45},
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		ProviderRequests,
		RenderAttempts,
		RenderRejected,
		RenderQueueWait,
		ChecksTotal,
		CheckDuration,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveProvider records one provider call. endpoint may be a full URL;
// only its host is used as a label.
func ObserveProvider(family, endpoint string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderRequests.WithLabelValues(family, hostOf(endpoint), outcome).Inc()
}

// ObserveCheck records a finished check.
func ObserveCheck(kind, verdict string, started time.Time) {
	ChecksTotal.WithLabelValues(kind, verdict).Inc()
	CheckDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}
