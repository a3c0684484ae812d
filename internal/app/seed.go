package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"liquidation-signal-lab/internal/config"
	"liquidation-signal-lab/internal/datasource"
	"liquidation-signal-lab/internal/domain"
)

// SymbolPlaceholder in a storage file path is replaced by each symbol.
const SymbolPlaceholder = "{symbol}"

// SymbolPath expands SymbolPlaceholder in path.
func SymbolPath(path, symbol string) string {
	return strings.ReplaceAll(path, SymbolPlaceholder, symbol)
}

// Seed fills in-memory stores for every configured symbol over [fromMs, toMs).
// Candles and liquidations come from the configured files; without a
// candles file, synthetic fixtures are generated instead.
func Seed(ctx context.Context, s *Stores, cfg *config.Config, fromMs, toMs int64, logger zerolog.Logger) error {
	im := datasource.NewImporter(s.Candles, s.Events, datasource.DefaultBatchSize)

	for i, symbol := range cfg.Backtest.Symbols {
		candles, events, source, err := seedData(cfg, i, symbol, fromMs, toMs)
		if err != nil {
			return fmt.Errorf("seed %s: %w", symbol, err)
		}

		nc, err := im.ImportCandles(ctx, candles)
		if err != nil {
			return fmt.Errorf("seed %s: %w", symbol, err)
		}
		ne, err := im.ImportEvents(ctx, events)
		if err != nil {
			return fmt.Errorf("seed %s: %w", symbol, err)
		}

		logger.Info().
			Str("symbol", symbol).
			Str("source", source).
			Int("candles", nc).
			Int("events", ne).
			Msg("seeded in-memory data")
	}
	return nil
}

func seedData(cfg *config.Config, i int, symbol string, fromMs, toMs int64) ([]*domain.Candle, []*domain.LiquidationEvent, string, error) {
	st := cfg.Storage
	if st.CandlesCSV == "" {
		f, err := datasource.GenerateFixtures(datasource.FixtureOptions{
			Symbol:    symbol,
			Timeframe: cfg.Backtest.Timeframe,
			StartMs:   fromMs,
			EndMs:     toMs,
			Seed:      st.FixtureSeed + int64(i),
		})
		if err != nil {
			return nil, nil, "", err
		}
		return f.Candles, f.Events, "fixtures", nil
	}

	candles, err := datasource.LoadCandlesCSV(SymbolPath(st.CandlesCSV, symbol), symbol, cfg.Backtest.Timeframe)
	if err != nil {
		return nil, nil, "", err
	}
	var events []*domain.LiquidationEvent
	if st.LiquidationsJSON != "" {
		events, err = datasource.LoadLiquidationsJSON(SymbolPath(st.LiquidationsJSON, symbol), symbol)
		if err != nil {
			return nil, nil, "", err
		}
	}
	return candles, events, "files", nil
}
