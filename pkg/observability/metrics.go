package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techpal_http_requests_total",
			Help: "Total number of HTTP requests processed, by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "techpal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ProviderRequests counts outbound LLM provider calls by provider and outcome.
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techpal_llm_provider_requests_total",
			Help: "Total number of LLM provider calls, by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// FilteredReplies counts assistant replies replaced by the safety filter.
	FilteredReplies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techpal_filtered_replies_total",
			Help: "Total number of assistant replies replaced by the safety filter.",
		},
	)
)

// Middleware returns a Gin middleware that records request metrics
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Use the route template so path cardinality stays bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		requestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		requestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler returns the Prometheus scrape handler wrapped for Gin
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
