package config

import (
	"fmt"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/features"
	"liquidation-signal-lab/internal/optimizer"
	"liquidation-signal-lab/internal/simulation"
)

// TimeRange returns the visible backtest range [start, end) in Unix ms.
func (b *BacktestConfig) TimeRange() (startMs, endMs int64, err error) {
	startMs, err = features.ParseTimestampMs(b.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("backtest.start: %w", err)
	}
	endMs, err = features.ParseTimestampMs(b.End)
	if err != nil {
		return 0, 0, fmt.Errorf("backtest.end: %w", err)
	}
	return startMs, endMs, nil
}

// SimulationConfig returns the account settings shared by every combination.
func (b *BacktestConfig) SimulationConfig() simulation.Config {
	return simulation.Config{
		InitialEquity: b.InitialCash,
		CommissionPct: b.CommissionPct,
		Leverage:      b.Leverage,
	}
}

// BaseParams returns the fixed parameters of s. Mode is left empty.
func (c *Config) BaseParams(s *StrategyConfig) domain.StrategyParams {
	p := domain.StrategyParams{
		StrategyType:                 s.Type,
		AggregationWindowMinutes:     s.Parameters.AggregationWindowMinutes,
		LookbackWindowDays:           s.Parameters.LookbackWindowDays,
		AverageLiquidationMultiplier: s.Parameters.AverageLiquidationMultiplier,
		StopLossPct:                  s.Parameters.StopLossPct,
		TakeProfitPct:                s.Parameters.TakeProfitPct,
		ExitOnOppositeSignal:         s.Parameters.ExitOnOppositeSignal,
		CooldownCandles:              s.Parameters.CooldownCandles,
		PositionSizeFraction:         c.Backtest.PositionSizeFraction,
	}
	if c.Backtest.SlippagePctPerSide != nil {
		p.SlippagePctPerSide = *c.Backtest.SlippagePctPerSide
	}
	return p
}

// Grid expands the optimization ranges of s.
func (c *Config) Grid(s *StrategyConfig) (optimizer.Grid, error) {
	prefix := fmt.Sprintf("strategies[%s].optimization_ranges", s.Name)
	r := s.Ranges

	var g optimizer.Grid
	var err error
	if r.AggregationWindowMinutes != nil {
		if g.AggregationWindowMinutes, err = r.AggregationWindowMinutes.Ints(prefix + ".aggregation_window_minutes"); err != nil {
			return g, err
		}
	}
	if r.LookbackWindowDays != nil {
		if g.LookbackWindowDays, err = r.LookbackWindowDays.Ints(prefix + ".lookback_window_days"); err != nil {
			return g, err
		}
	}
	if r.AverageLiquidationMultiplier != nil {
		if g.AverageLiquidationMultiplier, err = r.AverageLiquidationMultiplier.Floats(prefix + ".average_liquidation_multiplier"); err != nil {
			return g, err
		}
	}
	if r.StopLossPct != nil {
		if g.StopLossPct, err = r.StopLossPct.Floats(prefix + ".stop_loss_pct"); err != nil {
			return g, err
		}
	}
	if r.TakeProfitPct != nil {
		if g.TakeProfitPct, err = r.TakeProfitPct.Floats(prefix + ".take_profit_pct"); err != nil {
			return g, err
		}
	}
	if r.CooldownCandles != nil {
		if g.CooldownCandles, err = r.CooldownCandles.Ints(prefix + ".cooldown_candles"); err != nil {
			return g, err
		}
	}

	switch {
	case r.ExitOnOppositeSignal != nil && len(r.ExitOnOppositeSignal.Values) > 0:
		g.ExitOnOppositeSignal = append([]bool(nil), r.ExitOnOppositeSignal.Values...)
	case c.Backtest.OptimizeExitOnOppositeSignal:
		g.ExitOnOppositeSignal = []bool{false, true}
	}
	return g, nil
}
