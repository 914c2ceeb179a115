package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carval_remote_requests_total",
			Help: "Total number of calls to remote services by outcome",
		},
		[]string{"service", "operation", "outcome"},
	)

	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carval_remote_request_duration_seconds",
			Help:    "Duration of calls to remote services in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	ListingsSampleFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carval_listings_sample_fallback_total",
			Help: "Number of listing searches answered with sample listings",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carval_http_requests_total",
			Help: "Total number of API requests by route and status code",
		},
		[]string{"route", "status"},
	)
)

// ObserveRemote records one remote call. outcome is "success" or an error kind.
func ObserveRemote(service, operation, outcome string, started time.Time) {
	RemoteRequests.WithLabelValues(service, operation, outcome).Inc()
	RemoteRequestDuration.WithLabelValues(service, operation).Observe(time.Since(started).Seconds())
}
