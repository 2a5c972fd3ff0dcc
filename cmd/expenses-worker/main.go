package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"expenses/internal/amqp"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/log"
	"expenses/internal/sheets"
	gsheet "expenses/internal/sheets/google"
	"expenses/internal/sheets/memory"
	"expenses/internal/worker"
)

func main() {
	cfg, err := cli.LoadConfig((*config.Config).ValidateWorker)
	if err != nil {
		cli.Fatal(nil, "Configuration error", err)
	}
	logger, err := cli.SetupLogger(cfg)
	if err != nil {
		cli.Fatal(nil, "Logger setup failed", err)
	}
	logger.Info("Starting expenses-worker", "mirror", cfg.MirrorBackend)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	mirror, err := newMirror(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize sheet mirror", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	w := worker.NewMirrorWorker(mirror, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := w.Run(gctx, client)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Worker error", err)
	}
	logger.Info("Worker stopped gracefully")
}

func newMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Mirror, error) {
	switch cfg.MirrorBackend {
	case "sheets":
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			Logger:          logger,
		})
		if err != nil {
			return nil, fmt.Errorf("google sheets: %w", err)
		}
		if _, err := client.EnsureHeader(ctx); err != nil {
			return nil, fmt.Errorf("google sheets: %w", err)
		}
		logger.Info("Google Sheets mirror ready", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
		return client, nil
	default:
		logger.Info("In-memory mirror ready")
		return memory.New(), nil
	}
}
