package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"liquidation-signal-lab/internal/config"
	"liquidation-signal-lab/internal/features"
	"liquidation-signal-lab/internal/orchestrator"
	"liquidation-signal-lab/internal/reporting"
)

// StrategySpecs converts configured strategies to orchestrator specs.
func StrategySpecs(cfg *config.Config) ([]orchestrator.StrategySpec, error) {
	specs := make([]orchestrator.StrategySpec, 0, len(cfg.Strategies))
	for i := range cfg.Strategies {
		s := &cfg.Strategies[i]
		grid, err := cfg.Grid(s)
		if err != nil {
			return nil, err
		}
		specs = append(specs, orchestrator.StrategySpec{
			Name: s.Name,
			Base: cfg.BaseParams(s),
			Grid: grid,
		})
	}
	return specs, nil
}

// MaxLookbackDays is the longest lookback any spec may request.
func MaxLookbackDays(specs []orchestrator.StrategySpec) int {
	longest := 0
	for _, s := range specs {
		longest = max(longest, s.Grid.MaxLookbackDays(s.Base.LookbackWindowDays))
	}
	return longest
}

// BatchOptions for RunBatch.
type BatchOptions struct {
	RunID  string // generated when empty
	Logger zerolog.Logger
	Now    func() time.Time
}

// BatchResult is the outcome of one optimization batch.
type BatchResult struct {
	Run    *orchestrator.RunResult
	Report *reporting.Report
	Files  []string // report files written
}

// RunBatch optimizes every configured unit and writes the report files.
// In-memory stores are seeded first with enough history for the longest
// lookback.
func RunBatch(ctx context.Context, cfg *config.Config, stores *Stores, opts BatchOptions) (*BatchResult, error) {
	logger := opts.Logger

	startMs, endMs, err := cfg.Backtest.TimeRange()
	if err != nil {
		return nil, err
	}
	specs, err := StrategySpecs(cfg)
	if err != nil {
		return nil, err
	}

	if stores.Memory {
		fetch := features.Params{StartMs: startMs, LookbackWindowDays: MaxLookbackDays(specs)}
		if err := Seed(ctx, stores, cfg, fetch.FetchStartMs(), endMs, logger); err != nil {
			return nil, err
		}
	}

	preparer := features.NewPreparer(features.PreparerOptions{
		CandleStore:           stores.Candles,
		LiquidationEventStore: stores.Events,
		FeatureStore:          stores.Features,
		Logger:                logger,
	})

	orch := orchestrator.New(orchestrator.Options{
		Preparer:         preparer,
		TradeRecordStore: stores.Trades,
		RunSummaryStore:  stores.Summaries,
		Strategies:       specs,
		Symbols:          cfg.Backtest.Symbols,
		TargetMetrics:    cfg.Backtest.TargetMetrics,
		Modes:            cfg.Backtest.Modes,
		Timeframe:        cfg.Backtest.Timeframe,
		StartMs:          startMs,
		EndMs:            endMs,
		Simulation:       cfg.Backtest.SimulationConfig(),
		Workers:          cfg.Backtest.Workers,
		RunID:            opts.RunID,
		Logger:           logger,
		Now:              opts.Now,
	})

	run, err := orch.Run(ctx)
	if err != nil {
		return &BatchResult{Run: run}, err
	}

	gen := reporting.NewGenerator(stores.Summaries, stores.Trades)
	if opts.Now != nil {
		gen = gen.WithClock(opts.Now)
	}
	report, err := gen.Generate(ctx, reporting.RunInfo{
		RunID:       run.RunID,
		Timeframe:   cfg.Backtest.Timeframe,
		StartMs:     startMs,
		EndMs:       endMs,
		InitialCash: cfg.Backtest.InitialCash,
		Failures:    FailureRows(run.Failures),
	})
	if err != nil {
		return &BatchResult{Run: run}, fmt.Errorf("generate report: %w", err)
	}

	files, err := reporting.WriteFiles(cfg.Output.Dir, report)
	if err != nil {
		return &BatchResult{Run: run, Report: report}, fmt.Errorf("write report: %w", err)
	}

	logger.Info().
		Str("run_id", run.RunID).
		Str("status", run.Status).
		Str("dir", cfg.Output.Dir).
		Int("files", len(files)).
		Msg("report written")

	return &BatchResult{Run: run, Report: report, Files: files}, nil
}

// FailureRows converts unit errors to report rows.
func FailureRows(failures []*orchestrator.UnitError) []reporting.FailureRow {
	rows := make([]reporting.FailureRow, len(failures))
	for i, f := range failures {
		rows[i] = reporting.FailureRow{
			Strategy: f.Strategy,
			Symbol:   f.Symbol,
			Mode:     f.Mode,
			Metric:   f.Metric,
			Reason:   f.Err.Error(),
		}
	}
	return rows
}
