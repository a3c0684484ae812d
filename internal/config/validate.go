package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/features"
	"liquidation-signal-lab/internal/metrics"
	"liquidation-signal-lab/internal/strategy"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Backtest.validate(); err != nil {
		return err
	}

	if c.Features.AggregationWindowMinutes < 1 {
		return errors.New("features.aggregation_window_minutes must be >= 1")
	}
	if c.Features.LookbackWindowDays < 1 {
		return errors.New("features.lookback_window_days must be >= 1")
	}

	if len(c.Strategies) == 0 {
		return errors.New("strategies must list at least one strategy")
	}
	seen := make(map[string]bool, len(c.Strategies))
	for i := range c.Strategies {
		s := &c.Strategies[i]
		if seen[s.Name] {
			return fmt.Errorf("strategies[%s]: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if err := c.validateStrategy(s); err != nil {
			return err
		}
	}

	if err := c.Storage.validate(); err != nil {
		return err
	}

	if c.Output.Dir == "" {
		return errors.New("output.dir is required")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level %q is not a valid level", c.Log.Level)
	}
	if c.Metrics.Addr != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	return nil
}

func (b *BacktestConfig) validate() error {
	if len(b.Symbols) == 0 {
		return errors.New("backtest.symbols is required")
	}
	for _, s := range b.Symbols {
		if strings.TrimSpace(s) == "" {
			return errors.New("backtest.symbols cannot contain empty entries")
		}
	}

	if _, err := features.ParseTimeframe(b.Timeframe); err != nil {
		return fmt.Errorf("backtest.timeframe: %w", err)
	}

	startMs, endMs, err := b.TimeRange()
	if err != nil {
		return err
	}
	if startMs >= endMs {
		return fmt.Errorf("backtest.start (%s) must be before backtest.end (%s)", b.Start, b.End)
	}

	if b.InitialCash <= 0 {
		return fmt.Errorf("backtest.initial_cash must be > 0, got %v", b.InitialCash)
	}
	if b.CommissionPct < 0 {
		return fmt.Errorf("backtest.commission_pct must be >= 0, got %v", b.CommissionPct)
	}
	if b.Leverage < 1 {
		return fmt.Errorf("backtest.leverage must be >= 1, got %v", b.Leverage)
	}
	if b.SlippagePctPerSide != nil && *b.SlippagePctPerSide < 0 {
		return fmt.Errorf("backtest.slippage_pct_per_side must be >= 0, got %v", *b.SlippagePctPerSide)
	}
	if b.PositionSizeFraction <= 0 || b.PositionSizeFraction > 1 {
		return fmt.Errorf("backtest.position_size_fraction must be in (0, 1], got %v", b.PositionSizeFraction)
	}
	if b.Workers < 1 {
		return errors.New("backtest.workers must be >= 1")
	}

	if len(b.Modes) == 0 {
		return errors.New("backtest.modes is required")
	}
	for _, m := range b.Modes {
		switch m {
		case domain.ModeBuy, domain.ModeSell, domain.ModeBoth:
		default:
			return fmt.Errorf("backtest.modes: unknown mode %q", m)
		}
	}

	if len(b.TargetMetrics) == 0 {
		return errors.New("backtest.target_metrics is required")
	}
	for _, m := range b.TargetMetrics {
		if !metrics.IsKnown(m) {
			return fmt.Errorf("backtest.target_metrics: %w %q", metrics.ErrUnknownMetric, m)
		}
	}
	return nil
}

func (c *Config) validateStrategy(s *StrategyConfig) error {
	prefix := fmt.Sprintf("strategies[%s]", s.Name)
	if s.Name == "" {
		return errors.New("strategies[].name is required")
	}

	base := c.BaseParams(s)
	base.Mode = domain.ModeBoth
	if err := strategy.Validate(base); err != nil {
		return fmt.Errorf("%s.parameters: %w", prefix, err)
	}
	if base.AggregationWindowMinutes < 1 {
		return fmt.Errorf("%s.parameters.aggregation_window_minutes must be >= 1", prefix)
	}
	if base.LookbackWindowDays < 1 {
		return fmt.Errorf("%s.parameters.lookback_window_days must be >= 1", prefix)
	}

	g, err := c.Grid(s)
	if err != nil {
		return err
	}
	ranges := prefix + ".optimization_ranges"
	if err := atLeast(ranges+".aggregation_window_minutes", g.AggregationWindowMinutes, 1); err != nil {
		return err
	}
	if err := atLeast(ranges+".lookback_window_days", g.LookbackWindowDays, 1); err != nil {
		return err
	}
	if err := atLeast(ranges+".cooldown_candles", g.CooldownCandles, 0); err != nil {
		return err
	}
	if err := nonNegative(ranges+".average_liquidation_multiplier", g.AverageLiquidationMultiplier); err != nil {
		return err
	}
	if err := nonNegative(ranges+".stop_loss_pct", g.StopLossPct); err != nil {
		return err
	}
	if err := nonNegative(ranges+".take_profit_pct", g.TakeProfitPct); err != nil {
		return err
	}
	return nil
}

func (s *StorageConfig) validate() error {
	if s.UseMemory {
		if s.FixtureSeed < 0 {
			return errors.New("storage.fixture_seed must be >= 0")
		}
		return nil
	}
	if s.PostgresDSN == "" {
		return errors.New("storage.postgres_dsn is required unless storage.use_memory is set")
	}
	if s.CandlesCSV != "" || s.LiquidationsJSON != "" {
		return errors.New("storage.candles_csv and storage.liquidations_json require storage.use_memory")
	}
	if s.PostgresMaxConns < 0 || s.PostgresMinConns < 0 {
		return errors.New("storage.postgres_max_conns and storage.postgres_min_conns must be >= 0")
	}
	if s.PostgresMaxConns > 0 && s.PostgresMinConns > s.PostgresMaxConns {
		return fmt.Errorf("storage.postgres_min_conns (%d) cannot exceed postgres_max_conns (%d)", s.PostgresMinConns, s.PostgresMaxConns)
	}
	return nil
}

func atLeast(field string, values []int, lower int) error {
	for _, v := range values {
		if v < lower {
			return fmt.Errorf("%s must be >= %d, got %d", field, lower, v)
		}
	}
	return nil
}

func nonNegative(field string, values []float64) error {
	for _, v := range values {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0, got %v", field, v)
		}
	}
	return nil
}
