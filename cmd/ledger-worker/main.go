package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"contas/internal/amqp"
	"contas/internal/cli"
	"contas/internal/config"
	applog "contas/internal/log"
	"contas/internal/metrics"
	"contas/internal/sheets"
	"contas/internal/sheets/google"
	"contas/internal/sheets/memory"
	"contas/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentLedger)
	logger.Info("Starting ledger-worker")

	m := metrics.New()

	ledger, err := newLedger(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize ledger", "error", err)
		os.Exit(1)
	}

	if cfg.AMQPURL == "" {
		logger.Error("Configuration validation failed", "error", "AMQP_URL is required for the ledger worker")
		os.Exit(1)
	}
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, m)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	ledgerWorker := worker.NewLedgerWorker(ledger, m)

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeInstanceStatus(gctx, ledgerWorker.HandleStatusMessage)
	})
	g.Go(func() error {
		return cli.ServeMetrics(gctx, cfg.MetricsAddr, m, logger.Logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Ledger worker stopped", "error", err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}

// newLedger returns the Google Sheets ledger when a spreadsheet is
// configured, otherwise an in-memory one for local runs.
func newLedger(cfg *config.Config, logger *applog.Logger) (sheets.LedgerWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, payments are kept in memory only")
		return memory.New(), nil
	}
	if err := cfg.ValidateLedger(); err != nil {
		return nil, err
	}

	// the token source keeps this context, so it must outlive the call
	ledger, err := google.New(context.Background(), google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.LedgerSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets ledger initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.LedgerSheetName)
	return ledger, nil
}
