// Package telemetry exposes Prometheus metrics for the recommender service.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skinmatch"

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds all service metrics on a private registry.
// All record methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	RateLimited  prometheus.Counter

	// Prediction metrics
	Predictions        *prometheus.CounterVec
	PredictionDuration prometheus.Histogram

	// Filtering metrics
	Filters         *prometheus.CounterVec
	ProductsMatched prometheus.Histogram
	CacheLookups    *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	m.HTTPDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"method", "route"})

	m.RateLimited = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the per-IP rate limiter",
	})

	m.Predictions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Classifier predictions by outcome",
	}, []string{"outcome"})

	m.PredictionDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Time spent in the classifier per prediction",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	})

	m.Filters = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "filter_requests_total",
		Help:      "Catalog filter runs by outcome",
	}, []string{"outcome"})

	m.ProductsMatched = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "filter_products_matched",
		Help:      "Number of products returned per filter run",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "filter_cache_lookups_total",
		Help:      "Filter result cache lookups by result",
	}, []string{"result"})

	return m
}

// Registry exposes the underlying registry (used by tests)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRateLimited counts a request rejected by the rate limiter
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// RecordPrediction records a classifier call
func (m *Metrics) RecordPrediction(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.PredictionDuration.Observe(duration.Seconds())
	}
}

// RecordFilter records a catalog filter run and its result size
func (m *Metrics) RecordFilter(outcome string, matched int) {
	if m == nil {
		return
	}
	m.Filters.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.ProductsMatched.Observe(float64(matched))
	}
}

// RecordCacheLookup records a filter cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
