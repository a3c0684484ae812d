package config

// Config is the root configuration of an optimization run.
type Config struct {
	Backtest   BacktestConfig   `yaml:"backtest"`
	Features   FeaturesConfig   `yaml:"features"`
	Strategies []StrategyConfig `yaml:"strategies"`
	Storage    StorageConfig    `yaml:"storage"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// BacktestConfig holds settings shared by every optimizer unit.
type BacktestConfig struct {
	Symbols       []string `yaml:"symbols"`
	Timeframe     string   `yaml:"timeframe"`
	Start         string   `yaml:"start"` // inclusive, RFC3339 or date
	End           string   `yaml:"end"`   // exclusive
	InitialCash   float64  `yaml:"initial_cash"`
	CommissionPct float64  `yaml:"commission_pct"`
	Leverage      float64  `yaml:"leverage"`
	Modes         []string `yaml:"modes"`
	TargetMetrics []string `yaml:"target_metrics"`

	SlippagePctPerSide   *float64 `yaml:"slippage_pct_per_side"`
	PositionSizeFraction float64  `yaml:"position_size_fraction"`

	// Sweep exit_on_opposite_signal over {false, true} for strategies
	// that do not list it in their optimization ranges.
	OptimizeExitOnOppositeSignal bool `yaml:"optimize_exit_on_opposite_signal"`

	Workers int `yaml:"workers"`
}

// FeaturesConfig holds window defaults for strategies that fix them.
type FeaturesConfig struct {
	AggregationWindowMinutes int `yaml:"aggregation_window_minutes"`
	LookbackWindowDays       int `yaml:"lookback_window_days"`
}

// StrategyConfig describes one strategy and its parameter grid.
type StrategyConfig struct {
	Name       string             `yaml:"name"`
	Type       string             `yaml:"type"` // COUNTER_TRADE | FOLLOW_THE_FLOW
	Parameters StrategyParameters `yaml:"parameters"`
	Ranges     OptimizationRanges `yaml:"optimization_ranges"`
}

// StrategyParameters are the fixed values used where no range is given.
type StrategyParameters struct {
	AggregationWindowMinutes     int     `yaml:"aggregation_window_minutes"`
	LookbackWindowDays           int     `yaml:"lookback_window_days"`
	AverageLiquidationMultiplier float64 `yaml:"average_liquidation_multiplier"`
	StopLossPct                  float64 `yaml:"stop_loss_pct"`
	TakeProfitPct                float64 `yaml:"take_profit_pct"`
	ExitOnOppositeSignal         bool    `yaml:"exit_on_opposite_signal"`
	CooldownCandles              int     `yaml:"cooldown_candles"`
}

// OptimizationRanges lists the swept parameters. Nil ranges are fixed.
type OptimizationRanges struct {
	AggregationWindowMinutes     *Range     `yaml:"aggregation_window_minutes"`
	LookbackWindowDays           *Range     `yaml:"lookback_window_days"`
	AverageLiquidationMultiplier *Range     `yaml:"average_liquidation_multiplier"`
	StopLossPct                  *Range     `yaml:"stop_loss_pct"`
	TakeProfitPct                *Range     `yaml:"take_profit_pct"`
	CooldownCandles              *Range     `yaml:"cooldown_candles"`
	ExitOnOppositeSignal         *BoolRange `yaml:"exit_on_opposite_signal"`
}

// Range is either an explicit value list or an inclusive start/end/step range.
type Range struct {
	Values []float64 `yaml:"values"`
	Start  *float64  `yaml:"start"`
	End    *float64  `yaml:"end"`
	Step   *float64  `yaml:"step"`
}

// BoolRange is an explicit list of boolean candidates.
type BoolRange struct {
	Values []bool `yaml:"values"`
}

// StorageConfig selects where raw data is read and results are written.
type StorageConfig struct {
	UseMemory     bool   `yaml:"use_memory"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"` // optional feature and summary sink

	// PostgreSQL pool limits. Zero keeps the pgxpool defaults.
	PostgresMaxConns int `yaml:"postgres_max_conns"`
	PostgresMinConns int `yaml:"postgres_min_conns"`

	// In-memory sources. Without files, synthetic fixtures are generated.
	CandlesCSV       string `yaml:"candles_csv"`
	LiquidationsJSON string `yaml:"liquidations_json"`
	FixtureSeed      int64  `yaml:"fixture_seed"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig holds the Prometheus endpoint settings. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}
