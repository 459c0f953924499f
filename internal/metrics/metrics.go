package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Fetch pipeline metrics
	FetchRequestsTotal   *prometheus.CounterVec
	FetchDurationSeconds prometheus.Histogram

	// LLM provider metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec

	// Extraction metrics
	ExtractionStrategyTotal *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPErrorsTotal     *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimiterDropped prometheus.Counter

	// Backup metrics
	BackupRunsTotal    *prometheus.CounterVec
	BackupSizeBytes    prometheus.Gauge
	BackupDurationSecs prometheus.Histogram
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		FetchRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curiosity_fetch_requests_total",
				Help: "Total number of answer fetch cycles by status",
			},
			[]string{"status"}, // status: success, question_not_found, transport_error, remote_error, empty_response, persistence_error
		),

		FetchDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "curiosity_fetch_duration_seconds",
				Help:    "Full fetch cycle duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60}, // LLM calls dominate
			},
		),

		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curiosity_llm_requests_total",
				Help: "Total number of chat completion calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curiosity_llm_duration_seconds",
				Help:    "Chat completion call duration in seconds by provider",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),

		ExtractionStrategyTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curiosity_extraction_strategy_total",
				Help: "Winning extraction strategy per response field",
			},
			[]string{"field", "strategy"}, // strategy: json, regex, text, marker, split, fallback, none
		),

		SingleflightDedupTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "curiosity_singleflight_dedup_total",
				Help: "Fetch calls coalesced into an in-flight fetch for the same question",
			},
		),

		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curiosity_http_requests_total",
				Help: "Total HTTP requests by method, path, and status",
			},
			[]string{"method", "path", "status"},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curiosity_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: not_found, validation, rate_limit, internal
		),

		HTTPDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curiosity_http_duration_seconds",
				Help:    "HTTP request duration in seconds by method and path",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),

		RateLimiterDropped: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "curiosity_rate_limiter_dropped_total",
				Help: "Requests rejected by the submit rate limiter",
			},
		),

		BackupRunsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curiosity_backup_runs_total",
				Help: "Database snapshot upload attempts by status",
			},
			[]string{"status"}, // status: success, error
		),

		BackupSizeBytes: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "curiosity_backup_size_bytes",
				Help: "Compressed size of the last uploaded snapshot",
			},
		),

		BackupDurationSecs: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "curiosity_backup_duration_seconds",
				Help:    "Snapshot compress and upload duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
	}

	return m
}

// ObserveExtraction records the winning strategy for each extracted field.
func (m *Metrics) ObserveExtraction(answer, related, experiments, games string) {
	if m == nil {
		return
	}
	m.ExtractionStrategyTotal.WithLabelValues("answer", answer).Inc()
	m.ExtractionStrategyTotal.WithLabelValues("related_questions", related).Inc()
	m.ExtractionStrategyTotal.WithLabelValues("experiments", experiments).Inc()
	m.ExtractionStrategyTotal.WithLabelValues("games", games).Inc()
}
