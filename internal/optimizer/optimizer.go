package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/features"
	"liquidation-signal-lab/internal/metrics"
	"liquidation-signal-lab/internal/simulation"
	"liquidation-signal-lab/internal/strategy"
)

// ErrNoCombinations is returned when a search has nothing to rank.
var ErrNoCombinations = errors.New("no parameter combinations evaluated")

// Search describes one (strategy type, mode) sweep over a grid.
type Search struct {
	StrategyType string
	Mode         string
	Grid         Grid
	Base         domain.StrategyParams // fixed values: slippage, position size, defaults
}

// Evaluation is the outcome of one parameter combination.
type Evaluation struct {
	Index   int // position in grid order
	Params  domain.StrategyParams
	Summary *metrics.Summary
	Trades  []*domain.TradeRecord
}

// Options for creating an Optimizer.
type Options struct {
	Preparer   *features.Preparer
	Timeframe  string
	StartMs    int64 // visible range start (inclusive)
	EndMs      int64 // visible range end (exclusive)
	Simulation simulation.Config
	Workers    int // concurrent simulations, <= 0 means 1
	Logger     zerolog.Logger
}

// Optimizer sweeps parameter grids over one symbol's feature tables.
type Optimizer struct {
	opts Options
}

// New creates an Optimizer.
func New(opts Options) *Optimizer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Optimizer{opts: opts}
}

// Load fetches raw inputs for symbol once, with enough history for the
// longest lookback any search may request.
func (o *Optimizer) Load(ctx context.Context, symbol string, maxLookbackDays int) (*features.Inputs, error) {
	p := o.featureParams(0, maxLookbackDays)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return o.opts.Preparer.Load(ctx, symbol, o.opts.Timeframe, p.FetchStartMs(), p.EndMs)
}

// Evaluate simulates every combination of s over in.
// Features are computed once per distinct (aggregation, lookback) pair;
// trailing windows make the extra fetched history irrelevant to the result.
// Evaluations are returned in grid order. A symbol without candles in the
// visible range yields features.ErrNoData.
func (o *Optimizer) Evaluate(ctx context.Context, in *features.Inputs, s Search) ([]*Evaluation, error) {
	base := s.Base
	base.StrategyType = s.StrategyType
	base.Mode = s.Mode

	combos := s.Grid.Combinations(base)
	if len(combos) == 0 {
		return nil, ErrNoCombinations
	}
	for _, p := range combos {
		if err := strategy.Validate(p); err != nil {
			return nil, fmt.Errorf("combination %s: %w", p.ID(), err)
		}
	}

	tables, err := o.tables(ctx, in, combos)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.Len() == 0 {
			return nil, fmt.Errorf("%s %s: %w", in.Symbol, o.opts.Timeframe, features.ErrNoData)
		}
	}

	started := time.Now()
	simCfg := o.opts.Simulation
	simCfg.Symbol = in.Symbol

	runner := simulation.NewRunner(simulation.RunnerOptions{})
	evals := make([]*Evaluation, len(combos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)

	for i, p := range combos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows := tables[windowKey{p.AggregationWindowMinutes, p.LookbackWindowDays}].Rows
			e, err := evaluate(gctx, runner, i, rows, p, simCfg)
			if err != nil {
				return err
			}
			evals[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.opts.Logger.Debug().
		Str("symbol", in.Symbol).
		Str("strategy", s.StrategyType).
		Str("mode", s.Mode).
		Int("combinations", len(combos)).
		Int("feature_tables", len(tables)).
		Dur("elapsed", time.Since(started)).
		Msg("grid evaluated")

	return evals, nil
}

type windowKey struct {
	aggregationMinutes int
	lookbackDays       int
}

// tables computes one feature table per distinct window pair.
func (o *Optimizer) tables(ctx context.Context, in *features.Inputs, combos []domain.StrategyParams) (map[windowKey]*features.Table, error) {
	tables := make(map[windowKey]*features.Table)
	for _, p := range combos {
		key := windowKey{p.AggregationWindowMinutes, p.LookbackWindowDays}
		if _, ok := tables[key]; ok {
			continue
		}
		table, err := o.opts.Preparer.ComputeInputs(in, o.featureParams(key.aggregationMinutes, key.lookbackDays))
		if err != nil {
			return nil, err
		}
		if err := o.opts.Preparer.Persist(ctx, table); err != nil {
			return nil, err
		}
		tables[key] = table
	}
	return tables, nil
}

func (o *Optimizer) featureParams(aggMinutes, lookbackDays int) features.Params {
	return features.Params{
		Timeframe:                o.opts.Timeframe,
		AggregationWindowMinutes: aggMinutes,
		LookbackWindowDays:       lookbackDays,
		StartMs:                  o.opts.StartMs,
		EndMs:                    o.opts.EndMs,
	}
}

func evaluate(ctx context.Context, runner *simulation.Runner, i int, rows []*domain.FeatureRow, p domain.StrategyParams, cfg simulation.Config) (*Evaluation, error) {
	res, err := runner.Run(ctx, rows, p, cfg)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", p.ID(), err)
	}

	curve := make([]float64, len(res.Equity))
	for j, pt := range res.Equity {
		curve[j] = pt.Equity
	}
	return &Evaluation{
		Index:   i,
		Params:  p,
		Summary: metrics.Compute(res.Trades, curve, res.InitialEquity, res.FinalEquity),
		Trades:  res.Trades,
	}, nil
}

// Select returns the evaluation maximizing metric and its value.
// Ties keep the earliest combination in grid order.
func Select(evals []*Evaluation, metric string) (*Evaluation, float64, error) {
	var best *Evaluation
	bestValue := 0.0
	for _, e := range evals {
		if e == nil {
			continue
		}
		v, err := e.Summary.Value(metric)
		if err != nil {
			return nil, 0, err
		}
		if best == nil || v > bestValue {
			best, bestValue = e, v
		}
	}
	if best == nil {
		return nil, 0, ErrNoCombinations
	}
	return best, bestValue, nil
}
