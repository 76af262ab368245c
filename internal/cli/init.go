// Package cli provides the finboard commands and the initialization steps
// they share: environment, logging, configuration, storage and signals.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"finboard/internal/amqp"
	"finboard/internal/config"
	applog "finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/storage"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from configuration and installs it
// as the slog default. Verbose forces debug level.
func SetupLogger(cfg *config.Config, verbose bool, out io.Writer) *applog.Logger {
	lc := applog.DefaultConfig()
	lc.Level = cfg.SlogLevel()
	if verbose {
		lc.Level = slog.LevelDebug
	}
	lc.Format = applog.Format(cfg.LogFormat)
	if out != nil {
		lc.Output = out
	}

	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration and runs the given validation.
func LoadConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	if validate == nil {
		validate = (*config.Config).Validate
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore opens the SQLite repository at dbPath.
func OpenStore(logger *applog.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to open SQLite repository",
			applog.NewFields().
				WithComponent(applog.ComponentStorage).
				WithError(err, applog.ErrorTypeDatabase).
				ToSlice()...)
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	logger.Info("SQLite repository ready", "path", dbPath)
	return repo, nil
}

// ConnectPublisher dials the broker when events are enabled. A failed dial
// is logged and the process continues without events. The returned close
// function is always safe to call.
func ConnectPublisher(cfg *config.Config, logger *applog.Logger) (services.ChangePublisher, func()) {
	if !cfg.EventsEnabled() {
		logger.Info("Change events disabled - no AMQP_URL provided")
		return nil, func() {}
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("AMQP unavailable, change events disabled",
			applog.NewFields().
				WithComponent(applog.ComponentAMQP).
				WithError(err, applog.ErrorTypeNetwork).
				ToSlice()...)
		return nil, func() {}
	}

	logger.Info("AMQP publisher connected",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("AMQP close failed", applog.FieldError, err.Error())
		}
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
