// Command server exposes the assessment engine as a JSON API with
// Prometheus metrics and graceful shutdown.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"geopolrisk/internal/assessment"
	"geopolrisk/internal/config"
	"geopolrisk/internal/dataset"
	"geopolrisk/internal/infrastructure"
	"geopolrisk/internal/store"
	transport "geopolrisk/internal/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.EnsureOutputDir(); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer providers.Shutdown(context.Background())

	ref, err := dataset.Load(ctx, cfg.Data, logger)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	metrics, err := infrastructure.NewBatchMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	engine := assessment.NewCachedHHI(assessment.NewHHIEngine(ref, logger), logger)
	batch := assessment.NewBatch(ref, engine, logger, metrics)

	sink, err := store.Open(cfg.Output.RecordsDB, logger)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer sink.Close()

	router := transport.NewRouter(transport.RouterDeps{
		Ref:            ref,
		Service:        batch,
		Sink:           sink,
		Logger:         logger,
		MetricsHandler: providers.PrometheusHTTP,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
