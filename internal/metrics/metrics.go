// Package metrics exposes Prometheus collectors for the HTTP service and
// the invoice exports it performs.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lvillar/invoicepdf"
)

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "invoicepdf",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invoicepdf",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "invoicepdf",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invoicepdf",
			Subsystem: "export",
			Name:      "total",
			Help:      "Invoice exports by output format and result.",
		},
		[]string{"format", "result"},
	)

	exportPages = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "invoicepdf",
			Subsystem: "export",
			Name:      "pages",
			Help:      "Pages per exported invoice.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		},
		[]string{"format"},
	)

	exportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "invoicepdf",
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "Time to plan, render and encode an invoice.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"format"},
	)
)

// Register adds the collectors to the default registry. It is safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			requestDuration, requestTotal, requestsInFlight,
			exportsTotal, exportPages, exportDuration,
		)
	})
}

// GinMiddleware records latency and status of every request.
func GinMiddleware() gin.HandlerFunc {
	Register()

	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// ObserveExport records one export attempt. pages is ignored on failure.
func ObserveExport(format string, pages int, elapsed time.Duration, err error) {
	Register()
	exportsTotal.WithLabelValues(format, Result(err)).Inc()
	if err == nil {
		exportPages.WithLabelValues(format).Observe(float64(pages))
		exportDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	}
}

// Result classifies an export error for the result label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, invoicepdf.ErrLayoutImpossible):
		return "layout_impossible"
	case errors.Is(err, invoicepdf.ErrBackendUnavailable):
		return "backend_unavailable"
	}
	return "error"
}
