package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the scanner
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Provider Metrics
	ProviderAttemptsTotal  prometheus.CounterVec
	ProviderCallDuration   prometheus.HistogramVec
	FallbackExhaustedTotal prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Pipeline Metrics
	AircraftObservedTotal prometheus.CounterVec
	SynthesisDuration     prometheus.HistogramVec
	PregenOutcomesTotal   prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scanner_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scanner_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Provider Metrics
		ProviderAttemptsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_provider_attempts_total",
				Help: "Fallback attempts by capability, provider and outcome",
			},
			[]string{"capability", "provider", "outcome"},
		),
		ProviderCallDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scanner_provider_call_duration_seconds",
				Help:    "External provider call latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
			[]string{"capability", "provider"},
		),
		FallbackExhaustedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_fallback_exhausted_total",
				Help: "Requests for which every provider in a chain failed",
			},
			[]string{"capability"},
		),

		// Cache Metrics
		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scanner_audio_cache_hits_total",
				Help: "Audio cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scanner_audio_cache_misses_total",
				Help: "Audio cache misses",
			},
		),

		// Pipeline Metrics
		AircraftObservedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_aircraft_observed_total",
				Help: "Aircraft observations returned by providers",
			},
			[]string{"provider"},
		),
		SynthesisDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scanner_synthesis_duration_seconds",
				Help:    "Speech synthesis latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"provider"},
		),
		PregenOutcomesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_pregen_outcomes_total",
				Help: "Pre-generation task outcomes",
			},
			[]string{"outcome"},
		),
	}
}
