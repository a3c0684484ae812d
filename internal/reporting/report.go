package reporting

import "time"

// Report represents the result of one optimization run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Timeframe   string
	StartMs     int64 // inclusive, Unix ms
	EndMs       int64 // exclusive, Unix ms
	InitialCash float64

	Overview Overview

	// Best combination per unit (sorted by symbol, strategy_type, mode, target_metric)
	Units []UnitRow

	// Best unit across symbols, strategies and modes per target metric
	Leaders []LeaderRow

	// Winning combinations' trades (sorted by symbol, strategy_id, entry_time)
	Trades []TradeRow

	Failures []FailureRow
}

// Overview counts units and trades of the run.
type Overview struct {
	Symbols     []string
	Strategies  []string
	Units       int // succeeded + failed
	Succeeded   int
	Failed      int
	TotalTrades int // across distinct winning combinations
}

// UnitRow is the best combination of one (symbol, strategy, mode, metric) unit.
type UnitRow struct {
	Symbol       string
	StrategyType string
	Mode         string
	TargetMetric string
	TargetValue  float64
	StrategyID   string
	Combinations int

	// Winning parameters
	AggregationWindowMinutes     int
	LookbackWindowDays           int
	AverageLiquidationMultiplier float64
	StopLossPct                  float64
	TakeProfitPct                float64
	ExitOnOppositeSignal         bool
	CooldownCandles              int

	// Performance
	TotalTrades          int
	WinRate              float64
	ReturnPct            float64
	FinalEquity          float64
	MaxDrawdownPct       float64
	SharpeRatio          float64
	ProfitFactor         float64
	AvgTradePct          float64
	MedianTradePct       float64
	P10TradePct          float64 // from stored trades, 0 when not persisted
	P90TradePct          float64
	MaxConsecutiveLosses int
}

// LeaderRow is the top unit of one target metric.
type LeaderRow struct {
	TargetMetric string
	TargetValue  float64
	Symbol       string
	StrategyType string
	Mode         string
	StrategyID   string
}

// TradeRow is one stored trade of a winning combination.
type TradeRow struct {
	Symbol      string
	StrategyID  string
	Direction   string
	EntryTime   int64
	EntryPrice  float64
	ExitTime    int64
	ExitPrice   float64
	ExitReason  string
	PnL         float64
	ReturnPct   float64
	HoldCandles int
}

// FailureRow is one failed unit.
type FailureRow struct {
	Strategy string
	Symbol   string
	Mode     string
	Metric   string
	Reason   string
}
