package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"liquidation-signal-lab/internal/app"
	"liquidation-signal-lab/internal/config"
	"liquidation-signal-lab/internal/datasource"
	"liquidation-signal-lab/internal/features"
	"liquidation-signal-lab/internal/observability"
	"liquidation-signal-lab/internal/reporting"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	symbol := flag.String("symbol", "", "Trading pair, e.g. BTCUSDT (required)")
	timeframe := flag.String("timeframe", config.DefaultTimeframe, "Candle timeframe")
	start := flag.String("start", "", "Range start, RFC3339 or YYYY-MM-DD (required)")
	end := flag.String("end", "", "Range end, exclusive (required)")
	aggMinutes := flag.Int("aggregation-window-minutes", config.DefaultAggregationWindowMinutes, "Rolling-sum window")
	lookbackDays := flag.Int("lookback-window-days", config.DefaultLookbackWindowDays, "Rolling-mean window")

	// Sources
	candlesCSV := flag.String("candles", "", "Candles CSV file")
	liquidationsJSON := flag.String("liquidations", "", "Liquidations JSON file")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "Read from PostgreSQL instead of files")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "Persist the table to ClickHouse")

	output := flag.String("out", "-", "Output CSV path, - for stdout")
	logLevel := flag.String("log-level", config.DefaultLogLevel, "Log level")
	flag.Parse()

	logger := observability.NewConsoleLogger(*logLevel, "features")

	if *symbol == "" || *start == "" || *end == "" {
		logger.Fatal().Msg("--symbol, --start and --end are required")
	}
	if *postgresDSN == "" && *candlesCSV == "" {
		logger.Fatal().Msg("--candles is required unless --postgres-dsn is set")
	}

	startMs, err := features.ParseTimestampMs(*start)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse --start")
	}
	endMs, err := features.ParseTimestampMs(*end)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse --end")
	}
	params := features.Params{
		Timeframe:                *timeframe,
		AggregationWindowMinutes: *aggMinutes,
		LookbackWindowDays:       *lookbackDays,
		StartMs:                  startMs,
		EndMs:                    endMs,
	}
	if err := params.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid parameters")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, err := app.OpenStores(ctx, config.StorageConfig{
		UseMemory:     *postgresDSN == "",
		PostgresDSN:   *postgresDSN,
		ClickhouseDSN: *clickhouseDSN,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()

	if stores.Memory {
		if err := loadFiles(ctx, stores, *symbol, *timeframe, *candlesCSV, *liquidationsJSON); err != nil {
			logger.Fatal().Err(err).Msg("load files")
		}
	}

	preparer := features.NewPreparer(features.PreparerOptions{
		CandleStore:           stores.Candles,
		LiquidationEventStore: stores.Events,
		FeatureStore:          stores.Features,
		Logger:                logger,
	})

	table, err := preparer.PrepareFeatures(ctx, *symbol, params)
	if err != nil {
		logger.Fatal().Err(err).Msg("prepare features")
	}
	if err := writeTable(*output, table, logger); err != nil {
		logger.Fatal().Err(err).Msg("write features")
	}
}

func loadFiles(ctx context.Context, stores *app.Stores, symbol, timeframe, candlesPath, liquidationsPath string) error {
	candles, err := datasource.LoadCandlesCSV(candlesPath, symbol, timeframe)
	if err != nil {
		return err
	}
	f := &datasource.Fixtures{Candles: candles}
	if liquidationsPath != "" {
		if f.Events, err = datasource.LoadLiquidationsJSON(liquidationsPath, symbol); err != nil {
			return err
		}
	}
	return datasource.NewImporter(stores.Candles, stores.Events, datasource.DefaultBatchSize).ImportFixtures(ctx, f)
}

func writeTable(path string, table *features.Table, logger zerolog.Logger) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	if err := reporting.WriteFeaturesCSV(bw, table.Rows); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	logger.Info().
		Int("rows", table.Len()).
		Int("binned", table.Stats.Binned).
		Int("out_of_range", table.Stats.OutOfRange).
		Bool("degenerate", table.Degenerate).
		Str("out", path).
		Msg("feature table written")
	return nil
}
