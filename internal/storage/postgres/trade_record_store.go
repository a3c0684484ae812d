package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

// tradeColumns matches the order of tradeValues and scanTradeRecord.
var tradeColumns = []string{
	"trade_id", "run_id", "symbol", "strategy_id", "direction",
	"entry_signal_time", "entry_time", "entry_price", "quantity", "margin",
	"exit_time", "exit_price", "exit_reason",
	"commission", "pnl", "return_pct", "outcome_class", "hold_candles",
}

var (
	insertTradeSQL = fmt.Sprintf("INSERT INTO trade_records (%s) VALUES (%s)",
		strings.Join(tradeColumns, ", "), placeholders(len(tradeColumns)))
	selectTradesSQL = fmt.Sprintf("SELECT %s FROM trade_records", strings.Join(tradeColumns, ", "))
)

func placeholders(n int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(p, ", ")
}

func tradeValues(t *domain.TradeRecord) []any {
	return []any{
		t.TradeID, t.RunID, t.Symbol, t.StrategyID, t.Direction,
		t.EntrySignalTime, t.EntryTime, t.EntryPrice, t.Quantity, t.Margin,
		t.ExitTime, t.ExitPrice, t.ExitReason,
		t.Commission, t.PnL, t.ReturnPct, t.OutcomeClass, t.HoldCandles,
	}
}

// Insert adds one trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	if _, err := s.pool.Exec(ctx, insertTradeSQL, tradeValues(t)...); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// InsertBulk copies trades in one transaction. Any duplicate trade_id
// aborts the whole batch with ErrDuplicateKey.
func (s *TradeRecordStore) InsertBulk(ctx context.Context, trades []*domain.TradeRecord) (err error) {
	if len(trades) == 0 {
		return nil
	}
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
	}
	defer observeQuery("trade_records_copy", time.Now(), &err)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"trade_records"}, tradeColumns,
		pgx.CopyFromSlice(len(trades), func(i int) ([]any, error) {
			return tradeValues(trades[i]), nil
		}),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy trade records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID returns ErrNotFound for unknown ids.
func (s *TradeRecordStore) GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	t, err := scanTradeRecord(s.pool.QueryRow(ctx, selectTradesSQL+" WHERE trade_id = $1", tradeID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade record by id: %w", err)
	}
	return t, nil
}

// GetByRun retrieves all trades of a run, ordered by (entry_time, trade_id) ASC.
func (s *TradeRecordStore) GetByRun(ctx context.Context, runID string) ([]*domain.TradeRecord, error) {
	return s.query(ctx, "trade_records_by_run",
		selectTradesSQL+" WHERE run_id = $1 ORDER BY entry_time, trade_id", runID)
}

// GetByRunStrategy retrieves trades for one symbol/strategy within a run.
func (s *TradeRecordStore) GetByRunStrategy(ctx context.Context, runID, symbol, strategyID string) ([]*domain.TradeRecord, error) {
	return s.query(ctx, "trade_records_by_strategy",
		selectTradesSQL+" WHERE run_id = $1 AND symbol = $2 AND strategy_id = $3 ORDER BY entry_time, trade_id",
		runID, symbol, strategyID)
}

func (s *TradeRecordStore) query(ctx context.Context, operation, sql string, args ...any) (_ []*domain.TradeRecord, err error) {
	defer observeQuery(operation, time.Now(), &err)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query trade records: %w", err)
	}

	trades, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.TradeRecord, error) {
		return scanTradeRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan trade records: %w", err)
	}
	if len(trades) == 0 {
		return nil, nil
	}
	return trades, nil
}

func scanTradeRecord(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	err := row.Scan(
		&t.TradeID, &t.RunID, &t.Symbol, &t.StrategyID, &t.Direction,
		&t.EntrySignalTime, &t.EntryTime, &t.EntryPrice, &t.Quantity, &t.Margin,
		&t.ExitTime, &t.ExitPrice, &t.ExitReason,
		&t.Commission, &t.PnL, &t.ReturnPct, &t.OutcomeClass, &t.HoldCandles,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
