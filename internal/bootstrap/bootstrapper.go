// Package bootstrap runs the two administrative database procedures: Init
// creates the base schema and seeds an empty table, Migrate adds the
// investment income column and backfills it.
package bootstrap

import (
	"context"
	"fmt"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/storage"

	"github.com/shopspring/decimal"
)

// Store is the slice of the repository the procedures need.
type Store interface {
	InvestmentIncomeColumn(ctx context.Context) (storage.ColumnState, error)
	CountRecords(ctx context.Context) (int, error)
	InsertSeedRecord(ctx context.Context, rec core.FinancialRecord) error
	SetInvestmentIncome(ctx context.Context, yearMonth string, amount decimal.Decimal) (int64, error)
	InvestmentSample(ctx context.Context, limit int) ([]core.InvestmentIncomeSample, error)
}

// SchemaMigrator moves the recorded schema version.
type SchemaMigrator interface {
	Version() (uint, bool, error)
	EnsureVersion(target uint) (bool, error)
	Force(version uint) error
}

// ChangePublisher announces that the dataset changed.
type ChangePublisher interface {
	PublishRecordChange(ctx context.Context, action core.ChangeAction, yearMonth string) error
}

const sampleSize = 3

const (
	msgInitSeeded      = "database initialized with seed data"
	msgInitSkipped     = "database already initialized (existing data, seeding skipped)"
	msgMigrateApplied  = "migration complete: investment_income column added and backfilled"
	msgMigrateUpToDate = "database already up to date, no migration needed"
)

type InitResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Seeded  bool   `json:"seeded"`
}

type MigrateResult struct {
	Success         bool                          `json:"success"`
	Message         string                        `json:"message"`
	MigratedRecords int                           `json:"migrated_records"`
	SampleData      []core.InvestmentIncomeSample `json:"sample_data"`
	Applied         bool                          `json:"-"`
	Skipped         []string                      `json:"-"`
}

type Bootstrapper struct {
	store     Store
	migrator  SchemaMigrator
	publisher ChangePublisher
	logger    *applog.Logger
}

// New builds a Bootstrapper. publisher may be nil.
func New(store Store, migrator SchemaMigrator, publisher ChangePublisher, logger *applog.Logger) *Bootstrapper {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &Bootstrapper{
		store:     store,
		migrator:  migrator,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentBootstrap),
	}
}

// Init creates the base schema when missing and seeds the table if it is
// empty. The first failed insert aborts the seed and is returned.
func (b *Bootstrapper) Init(ctx context.Context) (InitResult, error) {
	if _, err := b.migrator.EnsureVersion(storage.SchemaBase); err != nil {
		return InitResult{}, fmt.Errorf("create base schema: %w", err)
	}

	count, err := b.store.CountRecords(ctx)
	if err != nil {
		return InitResult{}, err
	}

	if count > 0 {
		b.logger.InfoContext(ctx, "Seeding skipped",
			applog.NewFields().WithOperation(applog.OpInit).WithCount(count).ToSlice()...)
		return InitResult{Success: true, Message: msgInitSkipped}, nil
	}

	seed := SeedRecords()
	for _, rec := range seed {
		if err := b.store.InsertSeedRecord(ctx, rec); err != nil {
			return InitResult{}, err
		}
	}

	b.logger.InfoContext(ctx, "Database seeded",
		applog.NewFields().WithOperation(applog.OpInit).WithCount(len(seed)).ToSlice()...)
	b.announce(ctx)

	return InitResult{Success: true, Message: msgInitSeeded, Seeded: true}, nil
}

// Migrate brings the schema to the extended version. When the column had to
// be added, every known month is backfilled; a month that fails or does not
// exist is skipped.
func (b *Bootstrapper) Migrate(ctx context.Context) (MigrateResult, error) {
	state, err := b.store.InvestmentIncomeColumn(ctx)
	if err != nil {
		return MigrateResult{}, err
	}

	version, recorded, err := b.migrator.Version()
	if err != nil {
		return MigrateResult{}, err
	}

	result := MigrateResult{Success: true, Message: msgMigrateUpToDate}

	switch {
	case state == storage.ColumnPresent:
		if !recorded || version < storage.SchemaExtended {
			if err := b.migrator.Force(storage.SchemaExtended); err != nil {
				return MigrateResult{}, err
			}
			b.logger.InfoContext(ctx, "Recorded existing investment_income column",
				applog.FieldSchemaVersion, storage.SchemaExtended)
		}

	default:
		if recorded && version >= storage.SchemaExtended {
			// version table claims a column the table does not have
			if err := b.migrator.Force(storage.SchemaBase); err != nil {
				return MigrateResult{}, err
			}
		}
		if _, err := b.migrator.EnsureVersion(storage.SchemaExtended); err != nil {
			return MigrateResult{}, fmt.Errorf("add investment_income column: %w", err)
		}
		result.Skipped = b.backfill(ctx)
		result.Applied = true
		result.Message = msgMigrateApplied
	}

	if result.MigratedRecords, err = b.store.CountRecords(ctx); err != nil {
		return MigrateResult{}, err
	}
	if result.SampleData, err = b.store.InvestmentSample(ctx, sampleSize); err != nil {
		return MigrateResult{}, err
	}

	if result.Applied {
		b.announce(ctx)
	}

	b.logger.InfoContext(ctx, "Migration finished",
		applog.FieldOperation, applog.OpMigrate,
		"applied", result.Applied,
		applog.FieldRecordCount, result.MigratedRecords,
		"skipped", len(result.Skipped))

	return result, nil
}

func (b *Bootstrapper) backfill(ctx context.Context) []string {
	var skipped []string
	for _, v := range BackfillValues() {
		n, err := b.store.SetInvestmentIncome(ctx, v.YearMonth, v.Amount)
		if err != nil {
			b.logger.WarnContext(ctx, "Backfill failed for month",
				applog.NewFields().
					WithOperation(applog.OpBackfill).
					WithRecord(v.YearMonth, "").
					WithError(err, applog.ErrorTypeDatabase).
					ToSlice()...)
			skipped = append(skipped, v.YearMonth)
			continue
		}
		if n == 0 {
			b.logger.DebugContext(ctx, "Backfill month not present",
				applog.FieldYearMonth, v.YearMonth)
			skipped = append(skipped, v.YearMonth)
		}
	}
	return skipped
}

func (b *Bootstrapper) announce(ctx context.Context) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.PublishRecordChange(ctx, core.ActionBootstrap, ""); err != nil {
		b.logger.ErrorContext(ctx, "Failed to publish bootstrap event",
			applog.NewFields().WithOperation(applog.OpPublish).WithError(err, applog.ErrorTypeNetwork).ToSlice()...)
	}
}
