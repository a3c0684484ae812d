// Package observability provides Prometheus metrics and structured logging.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feature metrics
	FeatureComputations *prometheus.CounterVec
	CandlesProcessed    prometheus.Counter
	EventsBinned        prometheus.Counter
	EventsOutOfRange    prometheus.Counter
	EventsRejected      prometheus.Counter
	FeatureDuration     prometheus.Histogram

	// Optimizer metrics
	UnitsTotal           *prometheus.CounterVec
	UnitDuration         *prometheus.HistogramVec
	CombinationsTotal    prometheus.Counter
	TradesSimulated      prometheus.Counter
	RunsTotal            *prometheus.CounterVec
	RunDuration          prometheus.Histogram
	LastSuccessfulRunSec prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered on reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "liquidation_signal_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FeatureComputations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "computations_total",
			Help:      "Total number of feature computations by outcome",
		}, []string{"outcome"}),
		CandlesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "candles_processed_total",
			Help:      "Total number of candles fed into feature computation",
		}),
		EventsBinned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "events_binned_total",
			Help:      "Total number of liquidation events assigned to a candle",
		}),
		EventsOutOfRange: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "events_out_of_range_total",
			Help:      "Total number of liquidation events outside the candle grid",
		}),
		EventsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "events_rejected_total",
			Help:      "Total number of liquidation events with invalid side or size",
		}),
		FeatureDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "duration_seconds",
			Help:      "Feature computation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),

		UnitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "units_total",
			Help:      "Total number of optimizer units by strategy and status",
		}, []string{"strategy", "status"}),
		UnitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "unit_duration_seconds",
			Help:      "Optimizer unit duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"strategy"}),
		CombinationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "combinations_total",
			Help:      "Total number of parameter combinations evaluated",
		}),
		TradesSimulated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "trades_simulated_total",
			Help:      "Total number of trades simulated",
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "runs_total",
			Help:      "Total number of batch runs by status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "run_duration_seconds",
			Help:      "Batch run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),
		LastSuccessfulRunSec: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful batch run",
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordFeatureComputation records one feature computation and its binning stats.
func RecordFeatureComputation(outcome string, candles, binned, outOfRange, rejected int, seconds float64) {
	DefaultMetrics.FeatureComputations.WithLabelValues(outcome).Inc()
	DefaultMetrics.CandlesProcessed.Add(float64(candles))
	DefaultMetrics.EventsBinned.Add(float64(binned))
	DefaultMetrics.EventsOutOfRange.Add(float64(outOfRange))
	DefaultMetrics.EventsRejected.Add(float64(rejected))
	DefaultMetrics.FeatureDuration.Observe(seconds)
}

// RecordUnit records one optimizer unit.
func RecordUnit(strategy, status string, combinations, trades int, seconds float64) {
	DefaultMetrics.UnitsTotal.WithLabelValues(strategy, status).Inc()
	DefaultMetrics.UnitDuration.WithLabelValues(strategy).Observe(seconds)
	DefaultMetrics.CombinationsTotal.Add(float64(combinations))
	DefaultMetrics.TradesSimulated.Add(float64(trades))
}

// RecordRun records a finished batch run.
func RecordRun(status string, durationSeconds float64, finishedUnix int64) {
	DefaultMetrics.RunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RunDuration.Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastSuccessfulRunSec.Set(float64(finishedUnix))
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
