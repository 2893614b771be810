package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"todoapi/internal/adapter/database"
	api "todoapi/internal/adapter/http"
	"todoapi/internal/adapter/telemetry"
	"todoapi/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()

	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := config.NewLogger(cfg)

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *config.Logger) error {
	tel, err := telemetry.NewContainer(ctx, cfg, logger)

	if err != nil {
		return err
	}

	defer tel.Shutdown(context.Background())

	tel.AppMetrics.StartSystemMetrics(ctx)

	store, err := database.Open(ctx, database.Options{
		URL:           cfg.DatabaseURL,
		RunMigrations: cfg.RunMigrations,
		Telemetry:     tel.NewTelemetryProbe(),
		QueryLogger:   queryLogger(cfg),
	})

	if err != nil {
		return err
	}

	defer store.Close()

	logger.Info("Database ready",
		zap.String("dialect", string(store.Dialect)),
		zap.Bool("migrations", cfg.RunMigrations),
		zap.Bool("strict_writes", cfg.StrictWrites))

	container := api.NewContainer(store, tel.NewTelemetryProbe(), logger, cfg)
	srv := api.NewServer(container, tel.AppMetrics, logger, cfg)

	logger.Info("Configuration",
		zap.String("environment", cfg.Environment),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS),
		zap.String("metrics_port", cfg.MetricsPort))

	return api.Serve(ctx, srv, logger)
}

// queryLogger returns a statement logger for the SQLite handle when debug
// logging is on.
func queryLogger(cfg *config.AppConfig) *zerolog.Logger {
	if cfg.LogLevel != "debug" {
		return nil
	}

	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("component", "sql").
		Logger()

	return &logger
}
