package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// routeUnmatched labels requests that hit no registered route, so probes for
// random URLs cannot grow the series count.
const routeUnmatched = "unmatched"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawbook",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "code"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pawbook",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "route"})

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pawbook",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Requests currently being served.",
	})

	// Up to the default upload cap; pet photos dominate the upper buckets.
	httpResponseBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pawbook",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response body size by method and route pattern.",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B .. 4MiB
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, httpInFlight, httpResponseBytes)
}

// Metrics records Prometheus request metrics labelled by route pattern
// (c.FullPath(), e.g. /api/v1/pets/:id/vaccine-qr). Serve them with
// promhttp.Handler() on /metrics.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		httpInFlight.Dec()
		route := c.FullPath()
		if route == "" {
			route = routeUnmatched
		}
		m := c.Request.Method
		httpRequests.WithLabelValues(m, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(m, route).Observe(time.Since(start).Seconds())
		if n := c.Writer.Size(); n >= 0 {
			httpResponseBytes.WithLabelValues(m, route).Observe(float64(n))
		}
	}
}
