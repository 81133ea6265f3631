package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/invoice-insights/internal/batch"
	"github.com/joseph-ayodele/invoice-insights/internal/common"
	"github.com/joseph-ayodele/invoice-insights/internal/export"
	"github.com/joseph-ayodele/invoice-insights/internal/extract"
	"github.com/joseph-ayodele/invoice-insights/internal/history"
	"github.com/joseph-ayodele/invoice-insights/internal/reconcile"
	"github.com/joseph-ayodele/invoice-insights/internal/server"
	"github.com/joseph-ayodele/invoice-insights/internal/validate"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oracleClient, closeOracle, err := common.NewOracleClient(ctx, cfg.Oracle, logger)
	if err != nil {
		logger.Error("failed to initialize oracle client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeOracle(); err != nil {
			logger.Error("failed to close oracle client", "error", err)
		}
	}()

	exporter, err := export.NewService(cfg.Server.OutputDir, logger)
	if err != nil {
		logger.Error("failed to initialize export service", "error", err)
		os.Exit(1)
	}

	store, err := history.NewStore(cfg.Server.HistoryPath, logger)
	if err != nil {
		logger.Error("failed to open history store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	validator := validate.NewValidator(validate.DefaultConfidenceThreshold, logger)
	orchestrator := extract.NewOrchestrator(oracleClient, validator, logger)
	coordinator := batch.NewCoordinator(orchestrator, cfg.Batch.MaxWorkers, logger)
	engine := reconcile.NewEngine(cfg.Analysis.DemoMode, cfg.Analysis.Currency, reconcile.NewTimeSeededRand(), logger)

	srv := server.New(orchestrator, coordinator, engine, exporter, server.Options{
		Model:       oracleClient.Model(),
		TopN:        cfg.Analysis.TopN,
		MaxUploadMB: cfg.Server.MaxUploadMB,
		Store:       store,
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // batch processing holds the response open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening",
			"addr", cfg.Server.Addr,
			"provider", cfg.Oracle.Provider,
			"model", oracleClient.Model(),
			"demo_mode", cfg.Analysis.DemoMode,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
