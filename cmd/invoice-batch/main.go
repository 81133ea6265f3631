package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/joseph-ayodele/invoice-insights/internal/batch"
	"github.com/joseph-ayodele/invoice-insights/internal/common"
	"github.com/joseph-ayodele/invoice-insights/internal/document"
	"github.com/joseph-ayodele/invoice-insights/internal/export"
	"github.com/joseph-ayodele/invoice-insights/internal/extract"
	"github.com/joseph-ayodele/invoice-insights/internal/reconcile"
	"github.com/joseph-ayodele/invoice-insights/internal/validate"
)

func main() {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("invoice-batch")
	var (
		dir      = fs.StringLong("dir", "", "directory of invoice documents to process (required)")
		limit    = fs.IntLong("limit", 0, "process at most this many files (0 = all)")
		out      = fs.StringLong("out", "", "output directory for artifacts (default from OUTPUT_DIR)")
		provider = fs.StringLong("provider", "", "oracle provider: 'anthropic' or 'gemini' (default from env)")
		model    = fs.StringLong("model", "", "override the oracle model name")
		topN     = fs.IntLong("top-n", 0, "savings ranking size (default from env)")
		demo     = fs.BoolLong("demo", "amplify aggregates for presentations")
		seed     = fs.IntLong("seed", 0, "seed for discount and demo draws (0 = time-based)")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("INVOICE_INSIGHTS")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *dir == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --dir is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *provider != "" {
		cfg.Oracle.Provider = *provider
	}
	if *model != "" {
		cfg.Oracle.Model = *model
	}
	if *out != "" {
		cfg.Server.OutputDir = *out
	}
	if *topN > 0 {
		cfg.Analysis.TopN = *topN
	}
	if *demo {
		cfg.Analysis.DemoMode = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := document.ListDirectory(*dir, *limit)
	if err != nil {
		logger.Error("failed to list input directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		logger.Warn("no supported documents found", "dir", *dir)
		return
	}

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

	rng := reconcile.NewTimeSeededRand()
	if *seed != 0 {
		rng = reconcile.NewRand(int64(*seed))
	}

	validator := validate.NewValidator(validate.DefaultConfidenceThreshold, logger)
	orchestrator := extract.NewOrchestrator(oracleClient, validator, logger)
	coordinator := batch.NewCoordinator(orchestrator, cfg.Batch.MaxWorkers, logger)
	engine := reconcile.NewEngine(cfg.Analysis.DemoMode, cfg.Analysis.Currency, rng, logger)

	summary := coordinator.ProcessBatch(ctx, docs)
	master := engine.BuildMasterList(summary.Results)
	savings := engine.ComputeSavingsAnalysis(summary.Results, cfg.Analysis.TopN)

	files, err := exporter.ExportAll(summary, master, savings)
	if err != nil {
		logger.Error("failed to write artifacts", "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"files", summary.TotalFiles,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"total_time_s", summary.TotalTime,
		"groups", len(master),
		"top_items", len(savings.TopItems),
	)
	fmt.Printf("Processed %d files (%d ok, %d failed) in %.1fs total\n",
		summary.TotalFiles, summary.Successful, summary.Failed, summary.TotalTime)
	fmt.Printf("Items CSV:    %s\n", files.ItemsCSV)
	fmt.Printf("Summary CSV:  %s\n", files.SummaryCSV)
	fmt.Printf("Results JSON: %s\n", files.ResultsJSON)
	if files.MasterXLSX != "" {
		fmt.Printf("Master List:  %s\n", files.MasterXLSX)
	}
	if files.SavingsXLSX != "" {
		fmt.Printf("Savings:      %s\n", files.SavingsXLSX)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
