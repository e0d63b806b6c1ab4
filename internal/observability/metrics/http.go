package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stylist"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	recommendationsTotal    *prometheus.CounterVec
	recommendationTruncated *prometheus.CounterVec
	recommendationScanned   *prometheus.HistogramVec
	recommendationDuration  *prometheus.HistogramVec
	classificationsTotal    *prometheus.CounterVec
	breakerState            *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	recommendationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recommendation",
			Name:      "requests_total",
			Help:      "Completed recommendation requests by result source and fallback reason.",
		},
		[]string{"service", "source", "fallback_reason"},
	)
	recommendationTruncated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recommendation",
			Name:      "truncated_total",
			Help:      "Recommendation requests whose AI reply hit the token limit.",
		},
		[]string{"service"},
	)
	recommendationScanned := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "recommendation",
			Name:      "scanned_products",
			Help:      "Distribution of candidate products sent to the AI per request.",
			Buckets:   []float64{0, 5, 10, 20, 30, 50, 100, 250},
		},
		[]string{"service"},
	)
	recommendationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "recommendation",
			Name:      "duration_seconds",
			Help:      "End-to-end recommendation duration in seconds by source.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service", "source"},
	)
	classificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bodyshape",
			Name:      "classifications_total",
			Help:      "Body shape classifications by resulting shape.",
		},
		[]string{"service", "shape"},
	)
	breakerState := newBreakerStateGauge()

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		recommendationsTotal,
		recommendationTruncated,
		recommendationScanned,
		recommendationDuration,
		classificationsTotal,
		breakerState,
	)

	return &HTTPServerMetrics{
		registry:                registry,
		requestTotal:            requestTotal,
		requestDuration:         requestDuration,
		requestInFlight:         requestInFlight,
		recommendationsTotal:    recommendationsTotal,
		recommendationTruncated: recommendationTruncated,
		recommendationScanned:   recommendationScanned,
		recommendationDuration:  recommendationDuration,
		classificationsTotal:    classificationsTotal,
		breakerState:            breakerState,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/profiles/"):
		return "/v1/profiles/{customer_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordRecommendation(service, source, fallbackReason string, truncated bool, scanned int, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if fallbackReason == "" {
		fallbackReason = "none"
	}
	m.recommendationsTotal.WithLabelValues(service, source, fallbackReason).Inc()
	m.recommendationDuration.WithLabelValues(service, source).Observe(duration.Seconds())
	if scanned > 0 {
		m.recommendationScanned.WithLabelValues(service).Observe(float64(scanned))
	}
	if truncated {
		m.recommendationTruncated.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordClassification(service, shape string) {
	if shape == "" {
		shape = "unknown"
	}
	m.classificationsTotal.WithLabelValues(service, shape).Inc()
}

// SetBreakerState records 0 closed, 1 half-open, 2 open.
func (m *HTTPServerMetrics) SetBreakerState(service, operation string, state int) {
	m.breakerState.WithLabelValues(service, operation).Set(float64(state))
}

func newBreakerStateGauge() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per operation (0 closed, 1 half-open, 2 open).",
		},
		[]string{"service", "operation"},
	)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
