package metrics

import (
	"math"
	"sort"

	"liquidation-signal-lab/internal/domain"
)

// Compute calculates a Summary from closed trades and the equity curve.
// equity holds account equity per candle; when empty, the curve is rebuilt
// from initial equity plus cumulative trade PnL.
// Trades are sorted by EntryTime ASC, TradeID ASC before computing
// order-dependent metrics (MaxConsecutiveLosses).
func Compute(trades []*domain.TradeRecord, equity []float64, initialEquity, finalEquity float64) *Summary {
	s := &Summary{
		InitialEquity: initialEquity,
		FinalEquity:   finalEquity,
		ReturnPct:     computeReturnPct(initialEquity, finalEquity),
	}

	sorted := sortTrades(trades)
	if len(equity) == 0 {
		equity = equityFromTrades(sorted, initialEquity)
	}
	s.MaxDrawdownPct = computeMaxDrawdownPct(initialEquity, equity)

	n := len(sorted)
	if n == 0 {
		return s
	}

	returns := make([]float64, n)
	for i, t := range sorted {
		returns[i] = t.ReturnPct
		if t.OutcomeClass == domain.OutcomeClassWin {
			s.Wins++
		} else {
			s.Losses++
		}
	}

	ordered := make([]float64, n)
	copy(ordered, returns)
	sort.Float64s(ordered)

	s.TotalTrades = n
	s.WinRate = computeWinRate(s.Wins, n)
	s.ProfitFactor = computeProfitFactor(sorted)
	s.MeanTradePct = computeMean(returns)
	s.StddevTradePct = computeStddev(returns, s.MeanTradePct)
	s.SharpeRatio = computeSharpe(s.MeanTradePct, s.StddevTradePct, n)
	s.MedianTradePct = computePercentile(ordered, 0.50)
	s.P10TradePct = computePercentile(ordered, 0.10)
	s.P90TradePct = computePercentile(ordered, 0.90)
	s.MaxConsecutiveLosses = computeMaxConsecutiveLosses(sorted)

	return s
}

// Apply copies the summary into a run summary row.
func (s *Summary) Apply(rs *domain.RunSummary) {
	rs.TotalTrades = s.TotalTrades
	rs.Wins = s.Wins
	rs.Losses = s.Losses
	rs.WinRate = s.WinRate
	rs.ReturnPct = s.ReturnPct
	rs.FinalEquity = s.FinalEquity
	rs.MaxDrawdownPct = s.MaxDrawdownPct
	rs.SharpeRatio = s.SharpeRatio
	rs.ProfitFactor = s.ProfitFactor
	rs.AvgTradePct = s.MeanTradePct
	rs.MedianTradePct = s.MedianTradePct
}

func sortTrades(trades []*domain.TradeRecord) []*domain.TradeRecord {
	sorted := make([]*domain.TradeRecord, 0, len(trades))
	for _, t := range trades {
		if t != nil {
			sorted = append(sorted, t)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].EntryTime != sorted[j].EntryTime {
			return sorted[i].EntryTime < sorted[j].EntryTime
		}
		return sorted[i].TradeID < sorted[j].TradeID
	})
	return sorted
}

// equityFromTrades returns equity after each trade, starting with initial.
func equityFromTrades(trades []*domain.TradeRecord, initial float64) []float64 {
	curve := make([]float64, 0, len(trades)+1)
	curve = append(curve, initial)
	eq := initial
	for _, t := range trades {
		eq += t.PnL
		curve = append(curve, eq)
	}
	return curve
}

func computeReturnPct(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return (final - initial) / initial * 100
}

// computeWinRate calculates win rate as wins / total.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// computeProfitFactor divides gross profit by gross loss.
// No trades or no profit yields 0; profit without loss yields +Inf.
func computeProfitFactor(trades []*domain.TradeRecord) float64 {
	profit, loss := 0.0, 0.0
	for _, t := range trades {
		if t.PnL > 0 {
			profit += t.PnL
		} else {
			loss -= t.PnL
		}
	}
	switch {
	case profit == 0:
		return 0
	case loss == 0:
		return math.Inf(1)
	default:
		return profit / loss
	}
}

// computeMean calculates arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computeSharpe scales the per-trade mean/stddev ratio by sqrt(n).
// Zero dispersion yields 0.
func computeSharpe(mean, stddev float64, n int) float64 {
	if stddev == 0 {
		return 0
	}
	return mean / stddev * math.Sqrt(float64(n))
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.10 = 10th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// computeMaxDrawdownPct returns the worst peak-to-trough decline of the
// curve as a positive percent of the peak. The initial equity seeds the peak.
func computeMaxDrawdownPct(initial float64, curve []float64) float64 {
	peak := initial
	worst := 0.0
	for _, eq := range curve {
		if eq > peak {
			peak = eq
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - eq) / peak * 100; dd > worst {
			worst = dd
		}
	}
	return worst
}

// computeMaxConsecutiveLosses finds longest streak of non-winning trades.
// Trades must be in chronological order.
func computeMaxConsecutiveLosses(trades []*domain.TradeRecord) int {
	maxStreak := 0
	currentStreak := 0

	for _, t := range trades {
		if t.OutcomeClass != domain.OutcomeClassWin {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}
