package metrics

import (
	"context"
	"errors"

	"liquidation-signal-lab/internal/storage"
)

// ErrNoTrades is returned when no trades are available for aggregation.
var ErrNoTrades = errors.New("no trades available for aggregation")

// Aggregator recomputes summaries from persisted trade records.
type Aggregator struct {
	tradeRecordStore storage.TradeRecordStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(tradeStore storage.TradeRecordStore) *Aggregator {
	return &Aggregator{tradeRecordStore: tradeStore}
}

// ComputeSummary rebuilds the summary of one (run, symbol, strategy) from its
// stored trades. The equity curve is reconstructed per trade, so drawdown
// ignores intrabar excursions of open positions.
// Returns ErrNoTrades if no trades match.
func (a *Aggregator) ComputeSummary(ctx context.Context, runID, symbol, strategyID string, initialEquity float64) (*Summary, error) {
	trades, err := a.tradeRecordStore.GetByRunStrategy(ctx, runID, symbol, strategyID)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, ErrNoTrades
	}

	final := initialEquity
	for _, t := range trades {
		final += t.PnL
	}
	return Compute(trades, nil, initialEquity, final), nil
}
