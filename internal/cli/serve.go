package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finboard/internal/auth"
	"finboard/internal/bootstrap"
	"finboard/internal/config"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/storage"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON API on PORT against the SQLite database at DB.

The database is not initialized automatically: call POST /api/init (or
"finboard init") once before reading records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, cmd)
		},
	}
}

func runServe(parent context.Context, opts *RootOptions, cmd *cobra.Command) error {
	LoadEnvFile()

	cfg, err := LoadConfig((*config.Config).ValidateServer)
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg, opts.Verbose, cmd.ErrOrStderr())

	cmp, err := auth.ComparatorByName(cfg.AdminCompare)
	if err != nil {
		return err
	}

	repo, err := OpenStore(logger, cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	publisher, closePublisher := ConnectPublisher(cfg, logger)
	defer closePublisher()

	srv := apphttp.NewServer(cfg.Addr(), apphttp.Dependencies{
		Records:   services.NewRecordService(repo, publisher, logger),
		Bootstrap: bootstrap.New(repo, storage.NewMigrator(cfg.DBPath), publisher, logger),
		Guard:     auth.NewGuard(cfg.AdminPassword, cmp),
		DB:        repo,
		Logger:    logger,
	})

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := SignalContext(parent)
	defer stop()

	logger.Info("Starting finboard server",
		"addr", cfg.Addr(),
		"db", cfg.DBPath,
		"events", cfg.EventsEnabled(),
		applog.FieldOperation, applog.OpStartup)
	return Serve(ctx, srv, cfg.ShutdownTimeout, logger)
}

// Serve runs srv until ctx ends, then shuts it down within timeout.
func Serve(ctx context.Context, srv *apphttp.Server, timeout time.Duration, logger *applog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
			return err
		}
		logger.Info("Server stopped gracefully")
		return nil
	})

	return g.Wait()
}
