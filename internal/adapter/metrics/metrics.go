package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

var (
	// metricsOnce ensures metrics are registered only once
	metricsOnce sync.Once

	// scoreRequestsTotal tracks scoring requests by transport and status
	scoreRequestsTotal *prometheus.CounterVec

	// scoreDuration tracks latency of a full scoring call including input normalisation
	scoreDuration *prometheus.HistogramVec

	// finalProbability tracks the distribution of final default probabilities
	finalProbability prometheus.Histogram

	// subScoreProbability tracks the distribution of each sub-score
	subScoreProbability *prometheus.HistogramVec

	// decisionsTotal tracks recommendations
	decisionsTotal *prometheus.CounterVec

	// clampedFieldsTotal tracks input values forced into range by the input layer
	clampedFieldsTotal *prometheus.CounterVec

	// outboundErrorsTotal tracks outbound HTTP errors by type
	outboundErrorsTotal *prometheus.CounterVec

	// batchRowsTotal tracks rows handled by batch runs
	batchRowsTotal *prometheus.CounterVec
)

var probabilityBuckets = []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95}

// InitMetrics registers all Prometheus metrics.
// This should be called once at application startup
func InitMetrics() {
	metricsOnce.Do(func() {
		scoreRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditrisk_score_requests_total",
				Help: "Total number of scoring requests by transport and status",
			},
			[]string{"transport", "status"},
		)

		scoreDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditrisk_score_duration_seconds",
				Help:    "Duration of scoring requests in seconds",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
			},
			[]string{"transport"},
		)

		finalProbability = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "creditrisk_final_probability",
				Help:    "Distribution of final probability of default",
				Buckets: probabilityBuckets,
			},
		)

		subScoreProbability = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditrisk_subscore_probability",
				Help:    "Distribution of sub-score probabilities",
				Buckets: probabilityBuckets,
			},
			[]string{"subscore"},
		)

		decisionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditrisk_decisions_total",
				Help: "Total number of recommendations by outcome",
			},
			[]string{"recommendation"},
		)

		clampedFieldsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditrisk_clamped_fields_total",
				Help: "Input values clamped into their valid range, by field",
			},
			[]string{"field"},
		)

		outboundErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditrisk_outbound_errors_total",
				Help: "Total number of outbound HTTP errors by error type",
			},
			[]string{"error_type"},
		)

		batchRowsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditrisk_batch_rows_total",
				Help: "Rows processed by batch runs by source and result",
			},
			[]string{"source", "result"},
		)
	})
}

// RecordRequest records a scoring request
// transport: "rest", "grpc", "batch", "cli"
// status: "success", "invalid"
func RecordRequest(transport, status string) {
	if scoreRequestsTotal != nil {
		scoreRequestsTotal.WithLabelValues(transport, status).Inc()
	}
}

// RecordDuration records how long a scoring request took
func RecordDuration(transport string, d time.Duration) {
	if scoreDuration != nil {
		scoreDuration.WithLabelValues(transport).Observe(d.Seconds())
	}
}

// RecordResult records the probabilities and recommendation of a scored record
func RecordResult(result domain.ScoreResult, decision domain.Decision) {
	if finalProbability != nil {
		finalProbability.Observe(result.FinalProbability)
	}
	if subScoreProbability != nil {
		for i, p := range result.SubScores() {
			subScoreProbability.WithLabelValues(string(domain.SubModels[i].Name)).Observe(p)
		}
	}
	if decisionsTotal != nil {
		decisionsTotal.WithLabelValues(string(decision.Recommendation)).Inc()
	}
}

// RecordClamped records a value the input layer had to clamp
func RecordClamped(field domain.Field) {
	if clampedFieldsTotal != nil {
		clampedFieldsTotal.WithLabelValues(string(field)).Inc()
	}
}

// RecordError records an outbound HTTP error by type
// errorType: "timeout", "auth", "rate_limit", "server_error", "connection", "circuit_open"
func RecordError(errorType string) {
	if outboundErrorsTotal != nil {
		outboundErrorsTotal.WithLabelValues(errorType).Inc()
	}
}

// RecordBatchRow records one batch row
// result: "scored", "skipped"
func RecordBatchRow(source, result string) {
	if batchRowsTotal != nil {
		batchRowsTotal.WithLabelValues(source, result).Inc()
	}
}

// Timer is a helper for timing scoring requests
type Timer struct {
	transport string
	start     time.Time
}

// StartTimer creates a new timer for the given transport
func StartTimer(transport string) *Timer {
	return &Timer{transport: transport, start: time.Now()}
}

// ObserveDuration records the elapsed time since the timer started
func (t *Timer) ObserveDuration() {
	if t != nil {
		RecordDuration(t.transport, time.Since(t.start))
	}
}
