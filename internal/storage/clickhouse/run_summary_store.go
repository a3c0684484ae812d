package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// RunSummaryStore implements storage.RunSummaryStore using ClickHouse.
type RunSummaryStore struct {
	conn *Conn
}

// NewRunSummaryStore creates a new RunSummaryStore.
func NewRunSummaryStore(conn *Conn) *RunSummaryStore {
	return &RunSummaryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RunSummaryStore = (*RunSummaryStore)(nil)

const runSummaryColumnsSQL = `
	run_id, symbol, strategy_type, mode, target_metric,
	strategy_id, params_json, target_value, combinations,
	total_trades, wins, losses, win_rate,
	return_pct, final_equity, max_drawdown_pct, sharpe_ratio, profit_factor,
	avg_trade_pct, median_trade_pct, created_at_ms
`

// Insert adds a summary. Returns ErrDuplicateKey if key exists.
func (s *RunSummaryStore) Insert(ctx context.Context, rs *domain.RunSummary) error {
	if rs == nil || rs.RunID == "" || rs.Symbol == "" {
		return storage.ErrInvalidInput
	}

	// ReplacingMergeTree would replace silently; keep append-only semantics
	exists, err := s.exists(ctx, rs)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	params, err := json.Marshal(rs.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	query := `INSERT INTO run_summaries (` + runSummaryColumnsSQL + `) VALUES (
		?, ?, ?, ?, ?,
		?, ?, ?, ?,
		?, ?, ?, ?,
		?, ?, ?, ?, ?,
		?, ?, ?
	)`

	err = s.conn.Exec(ctx, query,
		rs.RunID, rs.Symbol, rs.StrategyType, rs.Mode, rs.TargetMetric,
		rs.StrategyID, string(params), rs.TargetValue, int64(rs.Combinations),
		int64(rs.TotalTrades), int64(rs.Wins), int64(rs.Losses), rs.WinRate,
		rs.ReturnPct, rs.FinalEquity, rs.MaxDrawdownPct, rs.SharpeRatio, rs.ProfitFactor,
		rs.AvgTradePct, rs.MedianTradePct, rs.CreatedAtMs,
	)
	if err != nil {
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// GetByRun retrieves all summaries of a run, ordered by key ASC.
func (s *RunSummaryStore) GetByRun(ctx context.Context, runID string) ([]*domain.RunSummary, error) {
	query := `SELECT ` + runSummaryColumnsSQL + `
		FROM run_summaries FINAL
		WHERE run_id = ?
		ORDER BY symbol ASC, strategy_type ASC, mode ASC, target_metric ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanRunSummaries(rows)
}

func (s *RunSummaryStore) exists(ctx context.Context, rs *domain.RunSummary) (bool, error) {
	query := `
		SELECT count() FROM run_summaries FINAL
		WHERE run_id = ? AND symbol = ? AND strategy_type = ? AND mode = ? AND target_metric = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, rs.RunID, rs.Symbol, rs.StrategyType, rs.Mode, rs.TargetMetric).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanRunSummaries(rows chRows) ([]*domain.RunSummary, error) {
	var result []*domain.RunSummary

	for rows.Next() {
		var rs domain.RunSummary
		var params string
		var combinations, totalTrades, wins, losses int64
		err := rows.Scan(
			&rs.RunID, &rs.Symbol, &rs.StrategyType, &rs.Mode, &rs.TargetMetric,
			&rs.StrategyID, &params, &rs.TargetValue, &combinations,
			&totalTrades, &wins, &losses, &rs.WinRate,
			&rs.ReturnPct, &rs.FinalEquity, &rs.MaxDrawdownPct, &rs.SharpeRatio, &rs.ProfitFactor,
			&rs.AvgTradePct, &rs.MedianTradePct, &rs.CreatedAtMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run summary row: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &rs.Params); err != nil {
			return nil, fmt.Errorf("unmarshal params: %w", err)
		}
		rs.Combinations = int(combinations)
		rs.TotalTrades = int(totalTrades)
		rs.Wins = int(wins)
		rs.Losses = int(losses)
		result = append(result, &rs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run summary rows: %w", err)
	}

	return result, nil
}
