package cli

import (
	"context"
	"errors"
	"fmt"

	"finboard/internal/amqp"
	"finboard/internal/config"
	applog "finboard/internal/log"
	gsheet "finboard/internal/sheets/google"
	"finboard/internal/worker"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewWorkerCommand creates the command that mirrors records to the spreadsheet.
func NewWorkerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Mirror records to Google Sheets on every change event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context(), rootOpts, cmd)
		},
		SilenceUsage: true,
	}
}

func runWorker(parent context.Context, opts *RootOptions, cmd *cobra.Command) error {
	LoadEnvFile()

	cfg, err := LoadConfig((*config.Config).ValidateWorker)
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg, opts.Verbose, cmd.ErrOrStderr())
	logger.Info("Starting finboard-worker", applog.FieldOperation, applog.OpStartup)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := SignalContext(parent)
	defer stop()

	repo, err := OpenStore(logger, cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	mirror, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, gsheet.CredentialsFromEnv(), logger)
	if err != nil {
		return fmt.Errorf("initialize Google Sheets client: %w", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	w := worker.NewMirrorWorker(repo, mirror, logger)

	// Catch up on anything changed while the worker was down.
	if err := w.Sync(ctx); err != nil {
		logger.Error("Startup mirror failed",
			applog.NewFields().WithOperation(applog.OpMirror).WithError(err, applog.ErrorTypeNetwork).ToSlice()...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeRecordChanges(gctx, w.HandleChange)
	})
	g.Go(func() error {
		return w.RunPeriodic(gctx, cfg.MirrorResyncInterval)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("Worker stopped", applog.FieldOperation, applog.OpShutdown)
	return err
}
