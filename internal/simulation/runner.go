package simulation

import (
	"context"
	"fmt"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
	"liquidation-signal-lab/internal/strategy"
)

// Runner simulates one parameter combination and persists its trades.
type Runner struct {
	tradeRecordStore storage.TradeRecordStore
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	TradeRecordStore storage.TradeRecordStore // nil disables persistence
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	return &Runner{
		tradeRecordStore: opts.TradeRecordStore,
	}
}

// Run executes a simulation for params over rows.
// Steps:
//  1. Build strategy via strategy.FromParams
//  2. Simulate over the feature rows
//  3. Persist trade records
func (r *Runner) Run(ctx context.Context, rows []*domain.FeatureRow, params domain.StrategyParams, cfg Config) (*Result, error) {
	strat, err := strategy.FromParams(params)
	if err != nil {
		return nil, err
	}

	res, err := Simulate(rows, strat, cfg)
	if err != nil {
		return nil, err
	}

	if r.tradeRecordStore != nil && len(res.Trades) > 0 {
		if err := r.tradeRecordStore.InsertBulk(ctx, res.Trades); err != nil {
			return nil, fmt.Errorf("store trades %s: %w", res.StrategyID, err)
		}
	}

	return res, nil
}
