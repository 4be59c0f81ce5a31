package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insightdeck_http_requests_total",
		Help: "HTTP requests by method and status.",
	}, []string{"method", "status"})

	decodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "insightdeck_decode_duration_seconds",
		Help:    "Wall time of a single decode call.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	decodeSections = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "insightdeck_decode_sections",
		Help:    "Sections emitted per decode call.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)

// MetricsMiddleware counts requests by method and response status.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
	})
}

// ObserveDecode records one decode call in the Prometheus histograms.
func ObserveDecode(d time.Duration, sections int) {
	decodeDuration.Observe(d.Seconds())
	decodeSections.Observe(float64(sections))
}
