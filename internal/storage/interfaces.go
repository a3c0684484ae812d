package storage

import (
	"context"

	"liquidation-signal-lab/internal/domain"
)

// Time ranges below are half-open: [start, end) in Unix milliseconds.

// CandleStore provides access to candles storage.
type CandleStore interface {
	// InsertBulk adds multiple candles atomically.
	// Fails entire batch on duplicate (symbol, timeframe, timestamp_ms).
	InsertBulk(ctx context.Context, candles []*domain.Candle) error

	// GetByTimeRange retrieves candles within [start, end), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, symbol, timeframe string, start, end int64) ([]*domain.Candle, error)
}

// LiquidationEventStore provides access to liquidation_events storage.
type LiquidationEventStore interface {
	// InsertBulk adds multiple events atomically.
	// Fails entire batch on duplicate (symbol, timestamp_ms, side).
	InsertBulk(ctx context.Context, events []*domain.LiquidationEvent) error

	// GetByTimeRange retrieves events within [start, end), ordered by (timestamp, side) ASC.
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.LiquidationEvent, error)
}

// FeatureStore is a write-mostly sink for computed feature rows.
// Feature computation never reads from it.
type FeatureStore interface {
	// InsertBulk adds multiple rows. Fails entire batch on duplicate (key, timestamp_ms).
	InsertBulk(ctx context.Context, rows []*domain.FeatureRow) error

	// GetByTimeRange retrieves rows of one series within [start, end), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, key domain.FeatureKey, start, end int64) ([]*domain.FeatureRow, error)
}

// TradeRecordStore provides access to trade_records storage.
type TradeRecordStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error)

	// GetByRun retrieves all trades of a run, ordered by (entry_time, trade_id) ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.TradeRecord, error)

	// GetByRunStrategy retrieves trades for one symbol/strategy within a run.
	GetByRunStrategy(ctx context.Context, runID, symbol, strategyID string) ([]*domain.TradeRecord, error)
}

// RunSummaryStore provides access to run_summaries storage.
type RunSummaryStore interface {
	// Insert adds a summary.
	// Returns ErrDuplicateKey if (run_id, symbol, strategy_type, mode, target_metric) exists.
	Insert(ctx context.Context, s *domain.RunSummary) error

	// GetByRun retrieves all summaries of a run,
	// ordered by (symbol, strategy_type, mode, target_metric) ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.RunSummary, error)
}
