package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/metrics"
	"liquidation-signal-lab/internal/storage"
)

// RunInfo carries run context that is not held in the stores.
type RunInfo struct {
	RunID       string
	Timeframe   string
	StartMs     int64
	EndMs       int64
	InitialCash float64
	Failures    []FailureRow
}

// Generator produces reports from stored run summaries and trades.
type Generator struct {
	summaryStore     storage.RunSummaryStore
	tradeRecordStore storage.TradeRecordStore // optional
	aggregator       *metrics.Aggregator
	now              func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. tradeStore may be nil, in
// which case trade-level columns stay zero and no trades are listed.
func NewGenerator(summaryStore storage.RunSummaryStore, tradeStore storage.TradeRecordStore) *Generator {
	g := &Generator{
		summaryStore:     summaryStore,
		tradeRecordStore: tradeStore,
		now:              func() time.Time { return time.Now().UTC() },
	}
	if tradeStore != nil {
		g.aggregator = metrics.NewAggregator(tradeStore)
	}
	return g
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces the report of one run.
func (g *Generator) Generate(ctx context.Context, info RunInfo) (*Report, error) {
	summaries, err := g.summaryStore.GetByRun(ctx, info.RunID)
	if err != nil {
		return nil, fmt.Errorf("load run summaries: %w", err)
	}

	units, err := g.generateUnits(ctx, info, summaries)
	if err != nil {
		return nil, err
	}

	trades, err := g.generateTrades(ctx, info.RunID, units)
	if err != nil {
		return nil, err
	}

	failures := append([]FailureRow(nil), info.Failures...)
	sortFailures(failures)

	return &Report{
		GeneratedAt: g.now(),
		RunID:       info.RunID,
		Timeframe:   info.Timeframe,
		StartMs:     info.StartMs,
		EndMs:       info.EndMs,
		InitialCash: info.InitialCash,
		Overview:    generateOverview(units, trades, failures),
		Units:       units,
		Leaders:     generateLeaders(units),
		Trades:      trades,
		Failures:    failures,
	}, nil
}

// generateUnits builds sorted unit rows, enriched with trade-level
// statistics recomputed from stored trades.
func (g *Generator) generateUnits(ctx context.Context, info RunInfo, summaries []*domain.RunSummary) ([]UnitRow, error) {
	stats := make(map[string]*metrics.Summary)
	rows := make([]UnitRow, len(summaries))

	for i, rs := range summaries {
		rows[i] = unitRow(rs)
		if g.aggregator == nil {
			continue
		}

		key := rs.Symbol + "|" + rs.StrategyID
		s, ok := stats[key]
		if !ok {
			var err error
			s, err = g.aggregator.ComputeSummary(ctx, info.RunID, rs.Symbol, rs.StrategyID, info.InitialCash)
			if err != nil && !errors.Is(err, metrics.ErrNoTrades) {
				return nil, fmt.Errorf("aggregate trades %s/%s: %w", rs.Symbol, rs.StrategyID, err)
			}
			stats[key] = s
		}
		if s != nil {
			rows[i].P10TradePct = s.P10TradePct
			rows[i].P90TradePct = s.P90TradePct
			rows[i].MaxConsecutiveLosses = s.MaxConsecutiveLosses
		}
	}

	sortUnits(rows)
	return rows, nil
}

// generateTrades lists the stored trades of each distinct winning combination.
func (g *Generator) generateTrades(ctx context.Context, runID string, units []UnitRow) ([]TradeRow, error) {
	if g.tradeRecordStore == nil {
		return nil, nil
	}

	seen := make(map[string]bool)
	var rows []TradeRow
	for _, u := range units {
		key := u.Symbol + "|" + u.StrategyID
		if seen[key] {
			continue
		}
		seen[key] = true

		trades, err := g.tradeRecordStore.GetByRunStrategy(ctx, runID, u.Symbol, u.StrategyID)
		if err != nil {
			return nil, fmt.Errorf("load trades %s/%s: %w", u.Symbol, u.StrategyID, err)
		}
		for _, t := range trades {
			rows = append(rows, TradeRow{
				Symbol:      t.Symbol,
				StrategyID:  t.StrategyID,
				Direction:   t.Direction,
				EntryTime:   t.EntryTime,
				EntryPrice:  t.EntryPrice,
				ExitTime:    t.ExitTime,
				ExitPrice:   t.ExitPrice,
				ExitReason:  t.ExitReason,
				PnL:         t.PnL,
				ReturnPct:   t.ReturnPct,
				HoldCandles: t.HoldCandles,
			})
		}
	}

	// Sort by (symbol, strategy_id, entry_time)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Symbol != rows[j].Symbol {
			return rows[i].Symbol < rows[j].Symbol
		}
		if rows[i].StrategyID != rows[j].StrategyID {
			return rows[i].StrategyID < rows[j].StrategyID
		}
		return rows[i].EntryTime < rows[j].EntryTime
	})
	return rows, nil
}

func unitRow(rs *domain.RunSummary) UnitRow {
	return UnitRow{
		Symbol:                       rs.Symbol,
		StrategyType:                 rs.StrategyType,
		Mode:                         rs.Mode,
		TargetMetric:                 rs.TargetMetric,
		TargetValue:                  rs.TargetValue,
		StrategyID:                   rs.StrategyID,
		Combinations:                 rs.Combinations,
		AggregationWindowMinutes:     rs.Params.AggregationWindowMinutes,
		LookbackWindowDays:           rs.Params.LookbackWindowDays,
		AverageLiquidationMultiplier: rs.Params.AverageLiquidationMultiplier,
		StopLossPct:                  rs.Params.StopLossPct,
		TakeProfitPct:                rs.Params.TakeProfitPct,
		ExitOnOppositeSignal:         rs.Params.ExitOnOppositeSignal,
		CooldownCandles:              rs.Params.CooldownCandles,
		TotalTrades:                  rs.TotalTrades,
		WinRate:                      rs.WinRate,
		ReturnPct:                    rs.ReturnPct,
		FinalEquity:                  rs.FinalEquity,
		MaxDrawdownPct:               rs.MaxDrawdownPct,
		SharpeRatio:                  rs.SharpeRatio,
		ProfitFactor:                 rs.ProfitFactor,
		AvgTradePct:                  rs.AvgTradePct,
		MedianTradePct:               rs.MedianTradePct,
	}
}

// generateLeaders picks the highest target value per metric.
// Ties keep the first unit in report order.
func generateLeaders(units []UnitRow) []LeaderRow {
	best := make(map[string]int)
	for i, u := range units {
		j, ok := best[u.TargetMetric]
		if !ok || u.TargetValue > units[j].TargetValue {
			best[u.TargetMetric] = i
		}
	}

	rows := make([]LeaderRow, 0, len(best))
	for metric, i := range best {
		u := units[i]
		rows = append(rows, LeaderRow{
			TargetMetric: metric,
			TargetValue:  u.TargetValue,
			Symbol:       u.Symbol,
			StrategyType: u.StrategyType,
			Mode:         u.Mode,
			StrategyID:   u.StrategyID,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].TargetMetric < rows[j].TargetMetric
	})
	return rows
}

func generateOverview(units []UnitRow, trades []TradeRow, failures []FailureRow) Overview {
	symbols := make(map[string]struct{})
	strategies := make(map[string]struct{})
	for _, u := range units {
		symbols[u.Symbol] = struct{}{}
		strategies[u.StrategyType] = struct{}{}
	}
	for _, f := range failures {
		symbols[f.Symbol] = struct{}{}
	}

	return Overview{
		Symbols:     sortedKeys(symbols),
		Strategies:  sortedKeys(strategies),
		Units:       len(units) + len(failures),
		Succeeded:   len(units),
		Failed:      len(failures),
		TotalTrades: len(trades),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sortUnits sorts rows by (symbol, strategy_type, mode, target_metric).
func sortUnits(rows []UnitRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Symbol != rows[j].Symbol {
			return rows[i].Symbol < rows[j].Symbol
		}
		if rows[i].StrategyType != rows[j].StrategyType {
			return rows[i].StrategyType < rows[j].StrategyType
		}
		if rows[i].Mode != rows[j].Mode {
			return rows[i].Mode < rows[j].Mode
		}
		return rows[i].TargetMetric < rows[j].TargetMetric
	})
}

// sortFailures sorts rows by (strategy, symbol, mode, metric).
func sortFailures(rows []FailureRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Strategy != rows[j].Strategy {
			return rows[i].Strategy < rows[j].Strategy
		}
		if rows[i].Symbol != rows[j].Symbol {
			return rows[i].Symbol < rows[j].Symbol
		}
		if rows[i].Mode != rows[j].Mode {
			return rows[i].Mode < rows[j].Mode
		}
		return rows[i].Metric < rows[j].Metric
	})
}
