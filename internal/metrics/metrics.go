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

// Collectors are registered once per process with the default registry.
var (
	// HTTP requests by method, matched route and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pm_http_requests_total",
		Help: "Total number of HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pm_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	// Access decisions by resource kind; decision is "granted", "denied" or "error"
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pm_access_decisions_total",
		Help: "Total number of access checks by resource and outcome",
	}, []string{"resource", "decision"})

	HistoryEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pm_task_history_entries_total",
		Help: "Total number of task history entries written by action type",
	}, []string{"action"})

	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pm_websocket_connections_active",
		Help: "Number of active WebSocket connections",
	})
)

// RecordAccess counts one access decision.
func RecordAccess(resource string, granted bool, err error) {
	decision := "denied"
	switch {
	case err != nil:
		decision = "error"
	case granted:
		decision = "granted"
	}
	AccessDecisions.WithLabelValues(resource, decision).Inc()
}

// RecordHistory counts one written history entry.
func RecordHistory(action string) {
	HistoryEntries.WithLabelValues(action).Inc()
}

// Middleware records request count and latency per matched route.
// Unmatched paths are folded into one label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
