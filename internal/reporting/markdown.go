package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Liquidation Strategy Optimization Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s` | Timeframe: %s | Range: %s to %s | Initial cash: %.2f\n\n",
		r.RunID, r.Timeframe, formatTime(r.StartMs), formatTime(r.EndMs), r.InitialCash))

	// Overview
	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Symbols | %s |\n", joinOrDash(r.Overview.Symbols)))
	sb.WriteString(fmt.Sprintf("| Strategies | %s |\n", joinOrDash(r.Overview.Strategies)))
	sb.WriteString(fmt.Sprintf("| Units | %d |\n", r.Overview.Units))
	sb.WriteString(fmt.Sprintf("| Succeeded | %d |\n", r.Overview.Succeeded))
	sb.WriteString(fmt.Sprintf("| Failed | %d |\n", r.Overview.Failed))
	sb.WriteString(fmt.Sprintf("| Winning Trades Listed | %d |\n", r.Overview.TotalTrades))
	sb.WriteString("\n")

	// Leaders
	sb.WriteString("## Leaders\n\n")
	if len(r.Leaders) > 0 {
		sb.WriteString("| Target Metric | Value | Symbol | Strategy | Mode | Combination |\n")
		sb.WriteString("|---------------|-------|--------|----------|------|-------------|\n")
		for _, l := range r.Leaders {
			sb.WriteString(fmt.Sprintf("| %s | %.4f | %s | %s | %s | `%s` |\n",
				l.TargetMetric, l.TargetValue, l.Symbol, l.StrategyType, l.Mode, escapeCell(l.StrategyID)))
		}
	} else {
		sb.WriteString("No successful units.\n")
	}
	sb.WriteString("\n")

	// Best combinations
	sb.WriteString("## Best Combinations\n\n")
	if len(r.Units) > 0 {
		sb.WriteString("| Symbol | Strategy | Mode | Target | Value | Agg (min) | Lookback (d) | Mult | SL% | TP% | Opp | Cooldown | Trades | WinRate | Return% | MaxDD% | Sharpe | PF | P10 | P90 | MaxLoss |\n")
		sb.WriteString("|--------|----------|------|--------|-------|-----------|--------------|------|-----|-----|-----|----------|--------|---------|---------|--------|--------|----|-----|-----|---------|\n")
		for _, u := range r.Units {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.4f | %d | %d | %.2f | %.2f | %.2f | %t | %d | %d | %.4f | %.2f | %.2f | %.4f | %.4f | %.4f | %.4f | %d |\n",
				u.Symbol, u.StrategyType, u.Mode, u.TargetMetric, u.TargetValue,
				u.AggregationWindowMinutes, u.LookbackWindowDays, u.AverageLiquidationMultiplier,
				u.StopLossPct, u.TakeProfitPct, u.ExitOnOppositeSignal, u.CooldownCandles,
				u.TotalTrades, u.WinRate, u.ReturnPct, u.MaxDrawdownPct, u.SharpeRatio, u.ProfitFactor,
				u.P10TradePct, u.P90TradePct, u.MaxConsecutiveLosses))
		}
	} else {
		sb.WriteString("No best combinations available.\n")
	}
	sb.WriteString("\n")

	// Failures
	if len(r.Failures) > 0 {
		sb.WriteString("## Failures\n\n")
		sb.WriteString("| Strategy | Symbol | Mode | Metric | Reason |\n")
		sb.WriteString("|----------|--------|------|--------|--------|\n")
		for _, f := range r.Failures {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				f.Strategy, f.Symbol, f.Mode, f.Metric, escapeCell(f.Reason)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

// escapeCell keeps a value inside one table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
