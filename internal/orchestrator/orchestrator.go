// Package orchestrator runs the optimization batch.
// It coordinates: feature preparation → grid evaluation → selection → persistence
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/features"
	"liquidation-signal-lab/internal/observability"
	"liquidation-signal-lab/internal/optimizer"
	"liquidation-signal-lab/internal/simulation"
	"liquidation-signal-lab/internal/storage"
)

// Run statuses reported to metrics.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// StrategySpec is one configured strategy: fixed parameters plus the grid.
type StrategySpec struct {
	Name string
	Base domain.StrategyParams // StrategyType set, Mode filled per unit
	Grid optimizer.Grid
}

// Options for creating Orchestrator.
type Options struct {
	Preparer         *features.Preparer
	TradeRecordStore storage.TradeRecordStore // nil skips trade persistence
	RunSummaryStore  storage.RunSummaryStore  // nil skips summary persistence

	Strategies    []StrategySpec
	Symbols       []string
	TargetMetrics []string
	Modes         []string

	Timeframe  string
	StartMs    int64 // inclusive
	EndMs      int64 // exclusive
	Simulation simulation.Config
	Workers    int

	RunID  string // generated when empty
	Logger zerolog.Logger
	Now    func() time.Time
}

// Orchestrator loops strategies × symbols × target metrics × modes.
// A failing unit is logged and recorded; the batch continues.
type Orchestrator struct {
	opts Options
	now  func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{opts: opts, now: now}
}

// RunID returns the batch identifier stamped on trades and summaries.
func (o *Orchestrator) RunID() string { return o.opts.RunID }

// UnitError records one failed (strategy, symbol, mode, metric) unit.
type UnitError struct {
	Strategy string
	Symbol   string
	Mode     string
	Metric   string
	Err      error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s/%s/%s/%s: %v", e.Strategy, e.Symbol, e.Mode, e.Metric, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// RunResult contains results from orchestrator execution.
type RunResult struct {
	RunID           string
	Summaries       []*domain.RunSummary // one per successful unit, in loop order
	Failures        []*UnitError
	UnitsTotal      int
	TradesPersisted int
	Status          string
	Duration        time.Duration
}

// Run executes every unit. Per-unit failures never abort the batch; only
// context cancellation does, returning the partial result with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	started := o.now()
	log := o.opts.Logger.With().Str("run_id", o.opts.RunID).Logger()
	result := &RunResult{RunID: o.opts.RunID}
	persisted := make(map[string]bool)

	log.Info().
		Int("strategies", len(o.opts.Strategies)).
		Int("symbols", len(o.opts.Symbols)).
		Int("metrics", len(o.opts.TargetMetrics)).
		Int("modes", len(o.opts.Modes)).
		Str("start", features.FormatMs(o.opts.StartMs)).
		Str("end", features.FormatMs(o.opts.EndMs)).
		Msg("batch started")

	var err error
loop:
	for _, spec := range o.opts.Strategies {
		for _, symbol := range o.opts.Symbols {
			if err = ctx.Err(); err != nil {
				break loop
			}
			o.runStrategySymbol(ctx, log, spec, symbol, result, persisted)
		}
	}
	if err == nil {
		err = ctx.Err()
	}

	result.Duration = o.now().Sub(started)
	result.Status = runStatus(result, err)
	observability.RecordRun(result.Status, result.Duration.Seconds(), o.now().Unix())

	log.Info().
		Str("status", result.Status).
		Int("units", result.UnitsTotal).
		Int("succeeded", len(result.Summaries)).
		Int("failed", len(result.Failures)).
		Int("trades_persisted", result.TradesPersisted).
		Dur("elapsed", result.Duration).
		Msg("batch finished")

	return result, err
}

// runStrategySymbol evaluates every (metric, mode) unit of one strategy on
// one symbol. Raw data is loaded once; each mode's grid is evaluated once
// and reused across target metrics.
func (o *Orchestrator) runStrategySymbol(ctx context.Context, log zerolog.Logger, spec StrategySpec, symbol string, result *RunResult, persisted map[string]bool) {
	log = log.With().Str("strategy", spec.Name).Str("symbol", symbol).Logger()
	result.UnitsTotal += len(o.opts.TargetMetrics) * len(o.opts.Modes)

	sim := o.opts.Simulation
	sim.RunID = o.opts.RunID
	opt := optimizer.New(optimizer.Options{
		Preparer:   o.opts.Preparer,
		Timeframe:  o.opts.Timeframe,
		StartMs:    o.opts.StartMs,
		EndMs:      o.opts.EndMs,
		Simulation: sim,
		Workers:    o.opts.Workers,
		Logger:     log,
	})

	in, err := opt.Load(ctx, symbol, spec.Grid.MaxLookbackDays(spec.Base.LookbackWindowDays))
	if err != nil {
		for _, metric := range o.opts.TargetMetrics {
			for _, mode := range o.opts.Modes {
				o.fail(log, result, spec, symbol, mode, metric, fmt.Errorf("load inputs: %w", err), 0)
			}
		}
		return
	}

	evals := make(map[string][]*optimizer.Evaluation, len(o.opts.Modes))
	evalErrs := make(map[string]error, len(o.opts.Modes))

	for _, metric := range o.opts.TargetMetrics {
		for _, mode := range o.opts.Modes {
			if ctx.Err() != nil {
				return
			}
			unitStart := o.now()

			var combinations, trades int
			es, done := evals[mode]
			if !done && evalErrs[mode] == nil {
				es, err = opt.Evaluate(ctx, in, optimizer.Search{
					StrategyType: spec.Base.StrategyType,
					Mode:         mode,
					Grid:         spec.Grid,
					Base:         spec.Base,
				})
				if errors.Is(err, features.ErrNoData) {
					// every mode sees the same empty range
					log.Warn().Msg("no candles in range, skipping symbol")
					for _, m := range o.opts.Modes {
						evalErrs[m] = err
					}
				} else if err != nil {
					evalErrs[mode] = fmt.Errorf("evaluate grid: %w", err)
				} else {
					evals[mode] = es
					combinations = len(es)
					for _, e := range es {
						trades += len(e.Trades)
					}
				}
			}
			if err := evalErrs[mode]; err != nil {
				o.fail(log, result, spec, symbol, mode, metric, err, o.now().Sub(unitStart))
				continue
			}

			best, value, err := optimizer.Select(es, metric)
			if err != nil {
				o.fail(log, result, spec, symbol, mode, metric, fmt.Errorf("select best: %w", err), o.now().Sub(unitStart))
				continue
			}

			summary := o.summarize(symbol, mode, metric, best, value, len(es))
			n, err := o.persist(ctx, summary, best, persisted)
			result.TradesPersisted += n
			if err != nil {
				o.fail(log, result, spec, symbol, mode, metric, err, o.now().Sub(unitStart))
				continue
			}
			result.Summaries = append(result.Summaries, summary)

			elapsed := o.now().Sub(unitStart)
			observability.RecordUnit(spec.Base.StrategyType, StatusSuccess, combinations, trades, elapsed.Seconds())
			log.Info().
				Str("mode", mode).
				Str("metric", metric).
				Float64("value", value).
				Str("best", summary.StrategyID).
				Int("trades", summary.TotalTrades).
				Int("combinations", summary.Combinations).
				Dur("elapsed", elapsed).
				Msg("unit completed")
		}
	}
}

func (o *Orchestrator) summarize(symbol, mode, metric string, best *optimizer.Evaluation, value float64, combinations int) *domain.RunSummary {
	rs := &domain.RunSummary{
		RunID:        o.opts.RunID,
		Symbol:       symbol,
		StrategyType: best.Params.StrategyType,
		Mode:         mode,
		TargetMetric: metric,
		StrategyID:   best.Params.ID(),
		Params:       best.Params,
		TargetValue:  value,
		Combinations: combinations,
		CreatedAtMs:  o.now().UnixMilli(),
	}
	best.Summary.Apply(rs)
	return rs
}

// persist stores the summary and, once per (symbol, strategy ID), the
// winning combination's trades. The same combination can win several
// target metrics; its trades carry identical IDs.
func (o *Orchestrator) persist(ctx context.Context, rs *domain.RunSummary, best *optimizer.Evaluation, persisted map[string]bool) (int, error) {
	n := 0
	key := rs.Symbol + "|" + rs.StrategyID
	if o.opts.TradeRecordStore != nil && !persisted[key] && len(best.Trades) > 0 {
		if err := o.opts.TradeRecordStore.InsertBulk(ctx, best.Trades); err != nil {
			return 0, fmt.Errorf("store trades: %w", err)
		}
		persisted[key] = true
		n = len(best.Trades)
	}
	if o.opts.RunSummaryStore != nil {
		if err := o.opts.RunSummaryStore.Insert(ctx, rs); err != nil {
			return n, fmt.Errorf("store summary: %w", err)
		}
	}
	return n, nil
}

func (o *Orchestrator) fail(log zerolog.Logger, result *RunResult, spec StrategySpec, symbol, mode, metric string, err error, elapsed time.Duration) {
	ue := &UnitError{Strategy: spec.Name, Symbol: symbol, Mode: mode, Metric: metric, Err: err}
	result.Failures = append(result.Failures, ue)
	observability.RecordUnit(spec.Base.StrategyType, StatusFailed, 0, 0, elapsed.Seconds())
	log.Error().
		Err(err).
		Str("mode", mode).
		Str("metric", metric).
		Msg("unit failed")
}

func runStatus(r *RunResult, err error) string {
	switch {
	case len(r.Summaries) == 0 && (len(r.Failures) > 0 || err != nil):
		return StatusFailed
	case len(r.Failures) > 0 || err != nil:
		return StatusPartial
	default:
		return StatusSuccess
	}
}
