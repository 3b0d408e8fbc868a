package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts routed requests by method, resource template, and status code
	HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "resource", "status"},
	)

	// HTTPRequestDuration records routed request latency in seconds
	HTTPRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			// Buckets: 1ms, 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, 10s
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "resource"},
	)

	// HTTPRequestsInFlight tracks the current number of requests being processed by the HTTP server
	HTTPRequestsInFlight = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// routedMethods are the methods the router answers; anything else is
// recorded as "other"
var routedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodOptions: true,
}

// ObserveRequest records one routed request. resource is the matched route
// template (or "unmatched") and unknown methods collapse to "other" so label
// cardinality stays bounded.
func ObserveRequest(method, resource string, status int, duration time.Duration) {
	if resource == "" {
		resource = "unmatched"
	}
	if !routedMethods[method] {
		method = "other"
	}
	HTTPRequestsTotal.WithLabelValues(method, resource, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, resource).Observe(duration.Seconds())
}

// InFlight returns gin middleware tracking in-flight requests
func InFlight() gin.HandlerFunc {
	return func(c *gin.Context) {
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()
		c.Next()
	}
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
