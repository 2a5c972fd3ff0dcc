// Package cli provides the initialization shared by cmd/expenses and
// cmd/expenses-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expenses/internal/config"
	"expenses/internal/log"
	"expenses/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from config and installs it as the
// slog default.
func SetupLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadConfig loads the .env file and the configuration, then validates it
// with validate.
func LoadConfig(validate func(*config.Config) error) (*config.Config, error) {
	LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitStorage opens the SQLite ledger and applies migrations.
func InitStorage(ctx context.Context, logger *log.Logger, cfg *config.Config) (*storage.SQLite, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}
	store, err := storage.OpenSQLite(ctx, cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage %s: %w", cfg.SQLiteDBPath, err)
	}
	logger.WithComponent(log.ComponentStorage).Info("SQLite storage ready",
		"path", cfg.SQLiteDBPath, "schema_version", store.SchemaVersion())
	return store, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	if logger == nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	} else {
		logger.Error(msg, log.FieldError, err)
	}
	os.Exit(1)
}
