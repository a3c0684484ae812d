package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"liquidation-signal-lab/internal/app"
	"liquidation-signal-lab/internal/config"
	"liquidation-signal-lab/internal/observability"
	"liquidation-signal-lab/internal/orchestrator"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("LAB_CONFIG", "configs/optimize.yaml"), "Path to YAML config")
	runID := flag.String("run-id", "", "Batch run identifier (generated when empty)")
	outputDir := flag.String("output-dir", "", "Override output.dir")
	pretty := flag.Bool("pretty", false, "Human-readable console logs")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		errLogger := observability.NewConsoleLogger("error", "optimize")
		errLogger.Fatal().Err(err).Msg("load config")
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	logger := observability.NewLogger(cfg.Log.Level, "optimize")
	if *pretty {
		logger = observability.NewConsoleLogger(cfg.Log.Level, "optimize")
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

	if cfg.Metrics.Addr != "" {
		srv := startMetricsServer(cfg.Metrics, logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	stores, err := app.OpenStores(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()

	res, err := app.RunBatch(ctx, cfg, stores, app.BatchOptions{
		RunID:  *runID,
		Logger: logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("batch aborted")
		stores.Close()
		os.Exit(1)
	}

	for _, path := range res.Files {
		logger.Info().Str("path", path).Msg("wrote")
	}
	if res.Run.Status == orchestrator.StatusFailed {
		stores.Close()
		os.Exit(1)
	}
}

func startMetricsServer(cfg config.MetricsConfig, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("path", cfg.Path).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()
	return srv
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
