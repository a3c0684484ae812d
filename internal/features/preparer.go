package features

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/observability"
	"liquidation-signal-lab/internal/storage"
)

// Inputs are the raw candles and events fetched for one symbol.
type Inputs struct {
	Symbol  string
	Candles []*domain.Candle
	Events  []*domain.LiquidationEvent
}

// Preparer fetches raw data from storage and computes feature tables.
type Preparer struct {
	candles storage.CandleStore
	events  storage.LiquidationEventStore
	sink    storage.FeatureStore // optional
	logger  zerolog.Logger
}

// PreparerOptions for creating a Preparer.
type PreparerOptions struct {
	CandleStore           storage.CandleStore
	LiquidationEventStore storage.LiquidationEventStore
	FeatureStore          storage.FeatureStore // nil disables persistence
	Logger                zerolog.Logger
}

// NewPreparer creates a new Preparer.
func NewPreparer(opts PreparerOptions) *Preparer {
	return &Preparer{
		candles: opts.CandleStore,
		events:  opts.LiquidationEventStore,
		sink:    opts.FeatureStore,
		logger:  opts.Logger,
	}
}

// Load fetches candles of timeframe and liquidation events for [fromMs, toMs).
func (p *Preparer) Load(ctx context.Context, symbol, timeframe string, fromMs, toMs int64) (*Inputs, error) {
	candles, err := p.candles.GetByTimeRange(ctx, symbol, timeframe, fromMs, toMs)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", symbol, err)
	}
	events, err := p.events.GetByTimeRange(ctx, symbol, fromMs, toMs)
	if err != nil {
		return nil, fmt.Errorf("fetch liquidation events %s: %w", symbol, err)
	}
	return &Inputs{Symbol: symbol, Candles: candles, Events: events}, nil
}

// PrepareFeatures returns one feature row per candle of symbol in
// [params.StartMs, params.EndMs). History back to params.FetchStartMs()
// is fetched to warm up the lookback window.
func (p *Preparer) PrepareFeatures(ctx context.Context, symbol string, params Params) (*Table, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	in, err := p.Load(ctx, symbol, params.Timeframe, params.FetchStartMs(), params.EndMs)
	if err != nil {
		return nil, err
	}

	table, err := p.ComputeInputs(in, params)
	if err != nil {
		return nil, err
	}

	if err := p.Persist(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

// ComputeInputs runs Compute on preloaded inputs, logging and recording metrics.
func (p *Preparer) ComputeInputs(in *Inputs, params Params) (*Table, error) {
	started := time.Now()

	table, err := Compute(in.Candles, in.Events, params)
	if err != nil {
		observability.RecordFeatureComputation("error", len(in.Candles), 0, 0, 0, time.Since(started).Seconds())
		return nil, fmt.Errorf("compute features %s: %w", in.Symbol, err)
	}

	outcome := "ok"
	switch {
	case len(in.Candles) == 0:
		outcome = "empty"
		p.logger.Warn().Str("symbol", in.Symbol).Str("timeframe", params.Timeframe).
			Str("start", FormatMs(params.StartMs)).Str("end", FormatMs(params.EndMs)).
			Msg("no candles for requested range")
	case table.Degenerate:
		outcome = "degenerate"
		p.logger.Error().Str("symbol", in.Symbol).Str("timeframe", params.Timeframe).
			Msg("unparseable timeframe, liquidation columns zeroed")
	}

	if table.Stats.OutOfRange > 0 || table.Stats.Rejected > 0 {
		p.logger.Warn().Str("symbol", in.Symbol).
			Int("out_of_range", table.Stats.OutOfRange).
			Int("rejected", table.Stats.Rejected).
			Int("total", table.Stats.Total).
			Msg("liquidation events not binned")
	}

	p.logger.Debug().Str("symbol", in.Symbol).Str("timeframe", params.Timeframe).
		Int("rows", table.Len()).Int("binned", table.Stats.Binned).
		Int("aggregation_candles", table.AggregationCandles).
		Int("lookback_candles", table.LookbackCandles).
		Msg("features computed")

	observability.RecordFeatureComputation(outcome, len(in.Candles),
		table.Stats.Binned, table.Stats.OutOfRange, table.Stats.Rejected, time.Since(started).Seconds())

	return table, nil
}

// Persist writes rows to the sink; series already stored are left untouched.
func (p *Preparer) Persist(ctx context.Context, table *Table) error {
	if p.sink == nil || table.Len() == 0 {
		return nil
	}
	err := p.sink.InsertBulk(ctx, table.Rows)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store features: %w", err)
	}
	return nil
}
