// Package app wires configuration to stores, feature preparation and the
// optimization batch shared by the commands.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"liquidation-signal-lab/internal/config"
	"liquidation-signal-lab/internal/storage"
	chstore "liquidation-signal-lab/internal/storage/clickhouse"
	"liquidation-signal-lab/internal/storage/memory"
	"liquidation-signal-lab/internal/storage/migrations"
	pgstore "liquidation-signal-lab/internal/storage/postgres"
)

// Stores holds all storage implementations of one process.
type Stores struct {
	Candles   storage.CandleStore
	Events    storage.LiquidationEventStore
	Features  storage.FeatureStore // nil when no sink is configured
	Trades    storage.TradeRecordStore
	Summaries storage.RunSummaryStore

	Memory  bool // raw data lives in memory and must be seeded
	closers []func()
}

// NewMemoryStores returns empty in-memory stores.
func NewMemoryStores() *Stores {
	return &Stores{
		Candles:   memory.NewCandleStore(),
		Events:    memory.NewLiquidationEventStore(),
		Features:  memory.NewFeatureStore(),
		Trades:    memory.NewTradeRecordStore(),
		Summaries: memory.NewRunSummaryStore(),
		Memory:    true,
	}
}

// OpenStores connects the stores described by cfg and applies migrations.
// PostgreSQL holds candles, liquidation events and trades. ClickHouse, when
// configured, holds feature rows and run summaries; otherwise summaries stay
// in memory and features are not persisted.
func OpenStores(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (*Stores, error) {
	if cfg.UseMemory {
		logger.Info().Msg("using in-memory storage")
		return NewMemoryStores(), nil
	}

	pool, err := pgstore.NewPoolWithOptions(ctx, cfg.PostgresDSN, pgstore.PoolOptions{
		MaxConns: int32(cfg.PostgresMaxConns),
		MinConns: int32(cfg.PostgresMinConns),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}

	s := &Stores{
		Candles:   pgstore.NewCandleStore(pool),
		Events:    pgstore.NewLiquidationEventStore(pool),
		Trades:    pgstore.NewTradeRecordStore(pool),
		Summaries: memory.NewRunSummaryStore(),
		closers:   []func(){pool.Close},
	}

	if cfg.ClickhouseDSN == "" {
		logger.Info().Msg("clickhouse not configured, features are not persisted")
		return s, nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	s.Features = chstore.NewFeatureStore(conn)
	s.Summaries = chstore.NewRunSummaryStore(conn)
	s.closers = append(s.closers, func() { conn.Close() })

	logger.Info().Msg("connected to postgres and clickhouse")
	return s, nil
}

// Close releases connections in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
