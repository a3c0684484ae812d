package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"liquidation-signal-lab/internal/app"
	"liquidation-signal-lab/internal/config"
	"liquidation-signal-lab/internal/datasource"
	"liquidation-signal-lab/internal/observability"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (required)")
	symbol := flag.String("symbol", "", "Trading pair, e.g. BTCUSDT (required)")
	timeframe := flag.String("timeframe", config.DefaultTimeframe, "Candle timeframe of the CSV")
	candlesCSV := flag.String("candles", "", "Candles CSV file")
	liquidationsJSON := flag.String("liquidations", "", "Liquidations JSON file")
	batchSize := flag.Int("batch-size", datasource.DefaultBatchSize, "Rows per insert batch")
	logLevel := flag.String("log-level", config.DefaultLogLevel, "Log level")
	flag.Parse()

	logger := observability.NewLogger(*logLevel, "load")

	if *postgresDSN == "" {
		logger.Fatal().Msg("--postgres-dsn is required")
	}
	if *symbol == "" {
		logger.Fatal().Msg("--symbol is required")
	}
	if *candlesCSV == "" && *liquidationsJSON == "" {
		logger.Fatal().Msg("nothing to load: set --candles and/or --liquidations")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	stores, err := app.OpenStores(ctx, config.StorageConfig{PostgresDSN: *postgresDSN}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()

	im := datasource.NewImporter(stores.Candles, stores.Events, *batchSize)

	if *candlesCSV != "" {
		candles, err := datasource.LoadCandlesCSV(*candlesCSV, *symbol, *timeframe)
		if err != nil {
			logger.Fatal().Err(err).Msg("read candles")
		}
		n, err := im.ImportCandles(ctx, candles)
		if err != nil {
			logger.Fatal().Err(err).Int("inserted", n).Msg("import candles")
		}
		logger.Info().Str("symbol", *symbol).Int("candles", n).Msg("candles loaded")
	}

	if *liquidationsJSON != "" {
		events, err := datasource.LoadLiquidationsJSON(*liquidationsJSON, *symbol)
		if err != nil {
			logger.Fatal().Err(err).Msg("read liquidations")
		}
		n, err := im.ImportEvents(ctx, events)
		if err != nil {
			logger.Fatal().Err(err).Int("inserted", n).Msg("import liquidations")
		}
		logger.Info().Str("symbol", *symbol).Int("events", n).Msg("liquidations loaded")
	}
}
