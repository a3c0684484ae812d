package metrics

import (
	"errors"
	"fmt"
	"math"
)

// Target metric names, as accepted in config.
const (
	MetricSharpeRatio  = "Sharpe Ratio"
	MetricReturnPct    = "Return [%]"
	MetricWinRatePct   = "Win Rate [%]"
	MetricProfitFactor = "Profit Factor"
	MetricMaxDrawdown  = "Max. Drawdown [%]"
	MetricFinalEquity  = "Equity Final [$]"
	MetricAvgTradePct  = "Avg. Trade [%]"
	MetricTrades       = "# Trades"
)

// ErrUnknownMetric is returned for a target metric name not in Metrics.
var ErrUnknownMetric = errors.New("unknown target metric")

// Metrics lists every supported target metric.
var Metrics = []string{
	MetricSharpeRatio,
	MetricReturnPct,
	MetricWinRatePct,
	MetricProfitFactor,
	MetricMaxDrawdown,
	MetricFinalEquity,
	MetricAvgTradePct,
	MetricTrades,
}

// IsKnown reports whether name is a supported target metric.
func IsKnown(name string) bool {
	for _, m := range Metrics {
		if m == name {
			return true
		}
	}
	return false
}

// Summary holds performance statistics of one simulated combination.
// Trade-level figures are percent returns on committed margin.
type Summary struct {
	// Counts
	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64 // wins / total

	// Account
	InitialEquity  float64
	FinalEquity    float64
	ReturnPct      float64 // (final - initial) / initial * 100
	MaxDrawdownPct float64 // worst peak-to-trough of the equity curve, positive percent

	// Trade distribution
	ProfitFactor   float64 // gross profit / gross loss, +Inf with profit and no loss
	SharpeRatio    float64 // mean / stddev * sqrt(n) of trade returns
	MeanTradePct   float64
	MedianTradePct float64
	P10TradePct    float64
	P90TradePct    float64
	StddevTradePct float64

	MaxConsecutiveLosses int
}

// Value returns the figure for a target metric, oriented so that larger is better.
// Drawdown is negated. NaN never escapes: undefined figures rank lowest.
func (s *Summary) Value(metric string) (float64, error) {
	var v float64
	switch metric {
	case MetricSharpeRatio:
		v = s.SharpeRatio
	case MetricReturnPct:
		v = s.ReturnPct
	case MetricWinRatePct:
		v = s.WinRate * 100
	case MetricProfitFactor:
		v = s.ProfitFactor
	case MetricMaxDrawdown:
		v = -s.MaxDrawdownPct
	case MetricFinalEquity:
		v = s.FinalEquity
	case MetricAvgTradePct:
		v = s.MeanTradePct
	case MetricTrades:
		v = float64(s.TotalTrades)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	if math.IsNaN(v) {
		return math.Inf(-1), nil
	}
	return v, nil
}
