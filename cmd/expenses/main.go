package main

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"expenses/internal/amqp"
	"expenses/internal/cli"
	"expenses/internal/config"
	apphttp "expenses/internal/http"
	"expenses/internal/log"
	"expenses/internal/services"
)

func main() {
	cfg, err := cli.LoadConfig((*config.Config).Validate)
	if err != nil {
		cli.Fatal(nil, "Configuration error", err)
	}
	logger, err := cli.SetupLogger(cfg)
	if err != nil {
		cli.Fatal(nil, "Logger setup failed", err)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	store, err := cli.InitStorage(ctx, logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize storage", err)
	}
	defer store.Close()

	opts := []services.Option{services.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// Change messages are best effort; the API still serves without the broker.
			logger.Warn("AMQP unavailable, change messages disabled", log.FieldError, err)
		} else {
			defer client.Close()
			opts = append(opts, services.WithPublisher(client))
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewExpenseService(store, opts...)
	srv := apphttp.NewServer(apphttp.Options{
		Addr:           cfg.Addr(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	}, svc, services.NewReconciler(svc))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expenses server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}
