// Package metrics exposes Prometheus instrumentation for the API and jobs.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config identifies the emitting service on every metric.
type Config struct {
	ServiceName string
	Environment string
}

// AggregationMetrics captures occupancy aggregation job instrumentation.
type AggregationMetrics struct {
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	bucketUpsert prometheus.Counter
	lotFailures  prometheus.Counter
}

var (
	aggregationMetricsOnce sync.Once
	aggregationMetrics     *AggregationMetrics
)

// Aggregation returns the process-wide aggregation metrics.
func Aggregation() *AggregationMetrics {
	return AggregationWithConfig(Config{})
}

// AggregationWithConfig builds the metrics once with the given labels.
func AggregationWithConfig(cfg Config) *AggregationMetrics {
	aggregationMetricsOnce.Do(func() {
		aggregationMetrics = newAggregationMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return aggregationMetrics
}

// ResetAggregationMetricsForTest clears the singleton between test registries.
func ResetAggregationMetricsForTest() {
	aggregationMetricsOnce = sync.Once{}
	aggregationMetrics = nil
}

func newAggregationMetrics(registerer prometheus.Registerer, cfg Config) *AggregationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := prometheus.Labels{
		"service": defaulted(cfg.ServiceName, "parkscope"),
		"env":     defaulted(cfg.Environment, "unknown"),
	}

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "parkscope_occupancy_aggregation_runs_total",
			Help:        "Total occupancy aggregation runs by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | partial | failed
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "parkscope_occupancy_aggregation_duration_seconds",
			Help:        "Duration of a full occupancy aggregation run.",
			Buckets:     []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
			ConstLabels: constLabels,
		},
	)
	bucketUpsert := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "parkscope_occupancy_buckets_upserted_total",
			Help:        "Total hourly occupancy rows written by the aggregator.",
			ConstLabels: constLabels,
		},
	)
	lotFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "parkscope_occupancy_lot_failures_total",
			Help:        "Total lots skipped by the aggregator due to errors.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(runs, runDuration, bucketUpsert, lotFailures)

	return &AggregationMetrics{
		runs:         runs,
		runDuration:  runDuration,
		bucketUpsert: bucketUpsert,
		lotFailures:  lotFailures,
	}
}

// ObserveRun records a completed aggregation run.
func (m *AggregationMetrics) ObserveRun(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// AddUpsertedBuckets counts written hourly occupancy rows.
func (m *AggregationMetrics) AddUpsertedBuckets(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bucketUpsert.Add(float64(n))
}

// IncLotFailure counts a lot skipped because of an error.
func (m *AggregationMetrics) IncLotFailure() {
	if m == nil {
		return
	}
	m.lotFailures.Inc()
}

func defaulted(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
