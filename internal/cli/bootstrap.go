package cli

import (
	"context"
	"fmt"

	"finboard/internal/bootstrap"
	"finboard/internal/config"
	"finboard/internal/storage"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the schema and seed an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBootstrapper(cmd, rootOpts, func(ctx context.Context, b *bootstrap.Bootstrapper, out *OutputFormatter) error {
				result, err := b.Init(ctx)
				if err != nil {
					return fmt.Errorf("database initialization failed: %w", err)
				}
				return out.Print(result, fmt.Sprintf("init: %s (seeded=%t)", result.Message, result.Seeded))
			})
		},
	}
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Add and backfill the investment income column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBootstrapper(cmd, rootOpts, func(ctx context.Context, b *bootstrap.Bootstrapper, out *OutputFormatter) error {
				result, err := b.Migrate(ctx)
				if err != nil {
					return fmt.Errorf("database migration failed: %w", err)
				}
				return out.Print(result, migrateText(result))
			})
		},
	}
}

func migrateText(r bootstrap.MigrateResult) string {
	text := fmt.Sprintf("migrate: %s (%d records)", r.Message, r.MigratedRecords)
	for _, s := range r.SampleData {
		text += fmt.Sprintf("\n  %s investment_income=%s", s.YearMonth, s.InvestmentIncome.StringFixed(2))
	}
	if len(r.Skipped) > 0 {
		text += fmt.Sprintf("\n  skipped: %v", r.Skipped)
	}
	return text
}

// withBootstrapper opens the configured database and runs fn against it.
// Events are published when AMQP is configured, as the HTTP endpoints do.
func withBootstrapper(cmd *cobra.Command, opts *RootOptions, fn func(context.Context, *bootstrap.Bootstrapper, *OutputFormatter) error) error {
	LoadEnvFile()

	cfg, err := LoadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg, opts.Verbose, cmd.ErrOrStderr())

	repo, err := OpenStore(logger, cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	publisher, closePublisher := ConnectPublisher(cfg, logger)
	defer closePublisher()

	b := bootstrap.New(repo, storage.NewMigrator(cfg.DBPath), publisher, logger)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, b, out)
}
