// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus HTTP instrumentation. Labels are kept to
// the registered route, the method, and the status code so cardinality stays
// bounded no matter what clients put in the URL.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "resume_roaster"

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	// Status is deliberately left off the latency histogram to halve its
	// series count.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_inflight",
			Help:      "Requests currently being served.",
		},
	)

	// Buckets sized for JSON envelopes: a bare error is a few hundred bytes,
	// a full extraction with page images runs to a few MiB.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response body size in bytes.",
			Buckets: []float64{
				256, 1 << 10, 4 << 10, 16 << 10,
				64 << 10, 256 << 10, 1 << 20, 4 << 20,
			},
		},
		[]string{"method", "path"},
	)

	// cacheOutcomes tracks the content-store hit rate. Creating endpoints
	// answer 201 when a provider was invoked and 200 when the stored result
	// was served, so the split falls straight out of the status code.
	cacheOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_outcomes_total",
			Help:      "Content-store outcomes of creating requests (hit = served from store, miss = freshly computed).",
		},
		[]string{"path", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, cacheOutcomes)
}

// Metrics returns a Gin middleware that records request counts, latency,
// in-flight concurrency, response sizes, and cache outcomes.
//
// The path label uses c.FullPath() so /api/v1/resumes/:hash stays one series
// regardless of the hash; unmatched requests (404s) fall back to the raw URL
// path. Hijacked responses report size -1 and are skipped in the size
// histogram.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := c.Writer.Status()

		httpReqs.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}

		if method == http.MethodPost {
			switch status {
			case http.StatusOK:
				cacheOutcomes.WithLabelValues(path, "hit").Inc()
			case http.StatusCreated:
				cacheOutcomes.WithLabelValues(path, "miss").Inc()
			}
		}
	}
}
