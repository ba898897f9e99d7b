package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suraksha_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "suraksha_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	SOSActivations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suraksha_sos_activations_total",
		Help: "Completed SOS activations.",
	})

	LocationPoints = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suraksha_location_points_total",
		Help: "Location points persisted during active sessions.",
	})

	RecordingsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suraksha_recordings_saved_total",
		Help: "Emergency recordings persisted, by type.",
	}, []string{"type"})

	CaptureFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suraksha_capture_failures_total",
		Help: "Failed capture branches during activation, by kind.",
	}, []string{"kind"})
)

// Middleware records per-request counters and latency.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) { h.ServeHTTP(c.Writer, c.Request) }
}
