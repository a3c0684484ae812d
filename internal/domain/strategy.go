package domain

import (
	"fmt"
	"strconv"
)

// Strategy types
const (
	StrategyTypeCounterTrade  = "COUNTER_TRADE"
	StrategyTypeFollowTheFlow = "FOLLOW_THE_FLOW"
)

// Trading modes restrict which side a strategy may open.
const (
	ModeBuy  = "buy"
	ModeSell = "sell"
	ModeBoth = "both"
)

// AllowsLong reports whether mode permits long entries.
func AllowsLong(mode string) bool { return mode == ModeBuy || mode == ModeBoth }

// AllowsShort reports whether mode permits short entries.
func AllowsShort(mode string) bool { return mode == ModeSell || mode == ModeBoth }

// StrategyParams is one fully-resolved parameter combination.
// Values are passed by value and never mutated after construction.
type StrategyParams struct {
	StrategyType string // COUNTER_TRADE | FOLLOW_THE_FLOW
	Mode         string // buy | sell | both

	// Feature windows
	AggregationWindowMinutes int // short rolling-sum horizon
	LookbackWindowDays       int // long rolling-average horizon

	// Signal
	AverageLiquidationMultiplier float64 // Aggregated > Avg * multiplier

	// Exits, in percent (2.0 = 2%)
	StopLossPct          float64
	TakeProfitPct        float64
	ExitOnOppositeSignal bool

	// COUNTER_TRADE only
	CooldownCandles int

	// Execution
	SlippagePctPerSide   float64 // percent applied on entry and exit
	PositionSizeFraction float64 // fraction of equity committed as margin, (0, 1]
}

// ID returns a deterministic identifier for the parameter combination.
func (p StrategyParams) ID() string {
	id := fmt.Sprintf("%s|%s|agg=%d|lb=%d|mult=%s|sl=%s|tp=%s",
		p.StrategyType, p.Mode,
		p.AggregationWindowMinutes, p.LookbackWindowDays,
		ftoa(p.AverageLiquidationMultiplier), ftoa(p.StopLossPct), ftoa(p.TakeProfitPct))
	if p.StrategyType == StrategyTypeCounterTrade {
		id += fmt.Sprintf("|cd=%d", p.CooldownCandles)
	}
	if p.ExitOnOppositeSignal {
		id += "|opp"
	}
	return id
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RunSummary is the best result of one (symbol, strategy, mode, target metric) unit.
// Corresponds to run_summaries table in ClickHouse.
type RunSummary struct {
	RunID        string // batch run identifier
	Symbol       string // trading pair
	StrategyType string // COUNTER_TRADE | FOLLOW_THE_FLOW
	Mode         string // buy | sell | both
	TargetMetric string // metric the optimizer maximized
	StrategyID   string // StrategyParams.ID() of the best combination
	Params       StrategyParams

	TargetValue    float64 // value of TargetMetric for the best combination
	Combinations   int     // parameter combinations evaluated
	TotalTrades    int
	Wins           int
	Losses         int
	WinRate        float64 // wins / total trades
	ReturnPct      float64 // (final - initial) / initial * 100
	FinalEquity    float64
	MaxDrawdownPct float64 // worst peak-to-trough, positive percent
	SharpeRatio    float64
	ProfitFactor   float64 // gross profit / gross loss
	AvgTradePct    float64
	MedianTradePct float64
	CreatedAtMs    int64
}
