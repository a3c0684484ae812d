package optimizer

import (
	"liquidation-signal-lab/internal/domain"
)

// Grid lists candidate values per optimized parameter.
// An empty list keeps the base value for that parameter.
type Grid struct {
	AggregationWindowMinutes     []int
	LookbackWindowDays           []int
	AverageLiquidationMultiplier []float64
	StopLossPct                  []float64
	TakeProfitPct                []float64
	ExitOnOppositeSignal         []bool
	CooldownCandles              []int // COUNTER_TRADE only
}

// Size returns the number of combinations Combinations yields for strategyType.
func (g Grid) Size(strategyType string) int {
	n := orOne(len(g.AggregationWindowMinutes)) *
		orOne(len(g.LookbackWindowDays)) *
		orOne(len(g.AverageLiquidationMultiplier)) *
		orOne(len(g.StopLossPct)) *
		orOne(len(g.TakeProfitPct)) *
		orOne(len(g.ExitOnOppositeSignal))
	if strategyType == domain.StrategyTypeCounterTrade {
		n *= orOne(len(g.CooldownCandles))
	}
	return n
}

// MaxLookbackDays returns the longest lookback the grid can request.
func (g Grid) MaxLookbackDays(base int) int {
	if len(g.LookbackWindowDays) == 0 {
		return base
	}
	m := g.LookbackWindowDays[0]
	for _, d := range g.LookbackWindowDays[1:] {
		if d > m {
			m = d
		}
	}
	return m
}

// Combinations returns the cartesian product of the grid applied to base,
// in a fixed order: aggregation, lookback, multiplier, stop loss, take
// profit, opposite exit, cooldown. Cooldown is only expanded for COUNTER_TRADE.
func (g Grid) Combinations(base domain.StrategyParams) []domain.StrategyParams {
	aggs := intsOr(g.AggregationWindowMinutes, base.AggregationWindowMinutes)
	lbs := intsOr(g.LookbackWindowDays, base.LookbackWindowDays)
	mults := floatsOr(g.AverageLiquidationMultiplier, base.AverageLiquidationMultiplier)
	sls := floatsOr(g.StopLossPct, base.StopLossPct)
	tps := floatsOr(g.TakeProfitPct, base.TakeProfitPct)
	exits := g.ExitOnOppositeSignal
	if len(exits) == 0 {
		exits = []bool{base.ExitOnOppositeSignal}
	}
	cooldowns := []int{base.CooldownCandles}
	if base.StrategyType == domain.StrategyTypeCounterTrade {
		cooldowns = intsOr(g.CooldownCandles, base.CooldownCandles)
	}

	out := make([]domain.StrategyParams, 0, g.Size(base.StrategyType))
	for _, agg := range aggs {
		for _, lb := range lbs {
			for _, mult := range mults {
				for _, sl := range sls {
					for _, tp := range tps {
						for _, exit := range exits {
							for _, cd := range cooldowns {
								p := base
								p.AggregationWindowMinutes = agg
								p.LookbackWindowDays = lb
								p.AverageLiquidationMultiplier = mult
								p.StopLossPct = sl
								p.TakeProfitPct = tp
								p.ExitOnOppositeSignal = exit
								p.CooldownCandles = cd
								out = append(out, p)
							}
						}
					}
				}
			}
		}
	}
	return out
}

func orOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func intsOr(values []int, fallback int) []int {
	if len(values) == 0 {
		return []int{fallback}
	}
	return values
}

func floatsOr(values []float64, fallback float64) []float64 {
	if len(values) == 0 {
		return []float64{fallback}
	}
	return values
}
