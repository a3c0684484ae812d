package config

import (
	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/metrics"
)

// Default values for optional configuration fields.
const (
	DefaultTimeframe                = "5m"
	DefaultInitialCash              = 10000.0
	DefaultLeverage                 = 1.0
	DefaultSlippagePctPerSide       = 0.05
	DefaultPositionSizeFraction     = 0.01
	DefaultWorkers                  = 4
	DefaultAggregationWindowMinutes = 60
	DefaultLookbackWindowDays       = 7
	DefaultOutputDir                = "reports"
	DefaultLogLevel                 = "info"
	DefaultMetricsPath              = "/metrics"
	DefaultFixtureSeed              = 1
	DefaultTargetMetric             = metrics.MetricSharpeRatio
)

// DefaultModes is used when backtest.modes is empty.
var DefaultModes = []string{domain.ModeBuy, domain.ModeSell, domain.ModeBoth}

func (c *Config) applyDefaults() {
	// Backtest defaults
	if c.Backtest.Timeframe == "" {
		c.Backtest.Timeframe = DefaultTimeframe
	}
	if c.Backtest.InitialCash == 0 {
		c.Backtest.InitialCash = DefaultInitialCash
	}
	if c.Backtest.Leverage == 0 {
		c.Backtest.Leverage = DefaultLeverage
	}
	if len(c.Backtest.Modes) == 0 {
		c.Backtest.Modes = append([]string(nil), DefaultModes...)
	}
	if len(c.Backtest.TargetMetrics) == 0 {
		c.Backtest.TargetMetrics = []string{DefaultTargetMetric}
	}
	if c.Backtest.SlippagePctPerSide == nil {
		v := DefaultSlippagePctPerSide
		c.Backtest.SlippagePctPerSide = &v
	}
	if c.Backtest.PositionSizeFraction == 0 {
		c.Backtest.PositionSizeFraction = DefaultPositionSizeFraction
	}
	if c.Backtest.Workers == 0 {
		c.Backtest.Workers = DefaultWorkers
	}

	// Feature window defaults
	if c.Features.AggregationWindowMinutes == 0 {
		c.Features.AggregationWindowMinutes = DefaultAggregationWindowMinutes
	}
	if c.Features.LookbackWindowDays == 0 {
		c.Features.LookbackWindowDays = DefaultLookbackWindowDays
	}

	// Strategies inherit feature windows they do not fix
	for i := range c.Strategies {
		p := &c.Strategies[i].Parameters
		if p.AggregationWindowMinutes == 0 {
			p.AggregationWindowMinutes = c.Features.AggregationWindowMinutes
		}
		if p.LookbackWindowDays == 0 {
			p.LookbackWindowDays = c.Features.LookbackWindowDays
		}
		if c.Strategies[i].Name == "" {
			c.Strategies[i].Name = c.Strategies[i].Type
		}
	}

	// Storage defaults
	if c.Storage.FixtureSeed == 0 {
		c.Storage.FixtureSeed = DefaultFixtureSeed
	}

	// Output, log and metrics defaults
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
