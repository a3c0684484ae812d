package reporting

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"liquidation-signal-lab/internal/domain"
)

var summaryHeader = []string{
	"symbol", "strategy_type", "mode", "target_metric", "target_value", "strategy_id", "combinations",
	"aggregation_window_minutes", "lookback_window_days", "average_liquidation_multiplier",
	"stop_loss_pct", "take_profit_pct", "exit_on_opposite_signal", "cooldown_candles",
	"total_trades", "win_rate", "return_pct", "final_equity", "max_drawdown_pct",
	"sharpe_ratio", "profit_factor", "avg_trade_pct", "median_trade_pct",
	"p10_trade_pct", "p90_trade_pct", "max_consecutive_losses",
}

var tradeHeader = []string{
	"symbol", "strategy_id", "direction", "entry_time", "entry_price",
	"exit_time", "exit_price", "exit_reason", "pnl", "return_pct", "hold_candles",
}

// RenderSummaryCSV renders unit rows as CSV string.
func RenderSummaryCSV(units []UnitRow) (string, error) {
	records := make([][]string, 0, len(units)+1)
	records = append(records, summaryHeader)
	for _, u := range units {
		records = append(records, []string{
			u.Symbol,
			u.StrategyType,
			u.Mode,
			u.TargetMetric,
			formatFloat(u.TargetValue),
			u.StrategyID,
			strconv.Itoa(u.Combinations),
			strconv.Itoa(u.AggregationWindowMinutes),
			strconv.Itoa(u.LookbackWindowDays),
			formatFloat(u.AverageLiquidationMultiplier),
			formatFloat(u.StopLossPct),
			formatFloat(u.TakeProfitPct),
			strconv.FormatBool(u.ExitOnOppositeSignal),
			strconv.Itoa(u.CooldownCandles),
			strconv.Itoa(u.TotalTrades),
			formatFloat(u.WinRate),
			formatFloat(u.ReturnPct),
			formatFloat(u.FinalEquity),
			formatFloat(u.MaxDrawdownPct),
			formatFloat(u.SharpeRatio),
			formatFloat(u.ProfitFactor),
			formatFloat(u.AvgTradePct),
			formatFloat(u.MedianTradePct),
			formatFloat(u.P10TradePct),
			formatFloat(u.P90TradePct),
			strconv.Itoa(u.MaxConsecutiveLosses),
		})
	}
	return renderRecords(records)
}

// RenderTradesCSV renders trade rows as CSV string. Times are RFC 3339 UTC.
func RenderTradesCSV(trades []TradeRow) (string, error) {
	records := make([][]string, 0, len(trades)+1)
	records = append(records, tradeHeader)
	for _, t := range trades {
		records = append(records, []string{
			t.Symbol,
			t.StrategyID,
			t.Direction,
			formatTime(t.EntryTime),
			formatFloat(t.EntryPrice),
			formatTime(t.ExitTime),
			formatFloat(t.ExitPrice),
			t.ExitReason,
			formatFloat(t.PnL),
			formatFloat(t.ReturnPct),
			strconv.Itoa(t.HoldCandles),
		})
	}
	return renderRecords(records)
}

// WriteFeaturesCSV writes a feature table: a timestamp column followed by
// domain.FeatureColumns, one line per row.
func WriteFeaturesCSV(w io.Writer, rows []*domain.FeatureRow) error {
	cw := csv.NewWriter(w)

	header := append([]string{"timestamp"}, domain.FeatureColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, r := range rows {
		record[0] = formatTime(r.TimestampMs)
		for i, v := range r.Values() {
			record[i+1] = formatFloat(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func renderRecords(records [][]string) (string, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(records); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
