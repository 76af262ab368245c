package services

import (
	"context"
	"errors"
	"fmt"

	"finboard/internal/core"
	applog "finboard/internal/log"
)

// RecordStore is the persistence the record service drives.
type RecordStore interface {
	ListRecords(ctx context.Context) ([]core.FinancialRecord, error)
	UpsertRecord(ctx context.Context, rec core.FinancialRecord) error
	UpdateRecord(ctx context.Context, rec core.FinancialRecord) (int64, error)
	DeleteRecord(ctx context.Context, yearMonth string) (int64, error)
}

// ChangePublisher announces a committed mutation.
type ChangePublisher interface {
	PublishRecordChange(ctx context.Context, action core.ChangeAction, yearMonth string) error
}

// RecordService applies validation and the visibility rule on top of the
// store, and publishes a change event after each successful mutation.
type RecordService struct {
	store     RecordStore
	publisher ChangePublisher
	logger    *applog.Logger
}

// NewRecordService builds the service. publisher may be nil, in which case
// no events are sent.
func NewRecordService(store RecordStore, publisher ChangePublisher, logger *applog.Logger) *RecordService {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &RecordService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentRecords),
	}
}

// List returns every record with the real capital.
func (s *RecordService) List(ctx context.Context) ([]core.FinancialRecord, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// ListPublic returns every record with capital replaced by risk-free income.
func (s *RecordService) ListPublic(ctx context.Context) ([]core.PublicRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.PublicViews(records), nil
}

// Create inserts or fully replaces the record for the input month.
func (s *RecordService) Create(ctx context.Context, in core.RecordInput) (core.FinancialRecord, error) {
	rec, err := in.ForCreate()
	if err != nil {
		return core.FinancialRecord{}, err
	}

	if err := s.store.UpsertRecord(ctx, rec); err != nil {
		return core.FinancialRecord{}, fmt.Errorf("save record: %w", err)
	}

	s.logger.InfoContext(ctx, "Record saved",
		applog.NewFields().WithRecord(rec.YearMonth, string(core.ActionUpsert)).ToSlice()...)
	s.publish(ctx, core.ActionUpsert, rec.YearMonth)
	return rec, nil
}

// Update rewrites an existing month. It returns core.ErrNotFound when the
// month does not exist.
func (s *RecordService) Update(ctx context.Context, in core.RecordInput) (core.FinancialRecord, error) {
	rec, err := in.ForUpdate()
	if err != nil {
		return core.FinancialRecord{}, err
	}

	n, err := s.store.UpdateRecord(ctx, rec)
	if err != nil {
		return core.FinancialRecord{}, fmt.Errorf("update record: %w", err)
	}
	if n == 0 {
		return core.FinancialRecord{}, core.ErrNotFound
	}

	s.logger.InfoContext(ctx, "Record updated",
		applog.NewFields().WithRecord(rec.YearMonth, string(core.ActionUpdate)).ToSlice()...)
	s.publish(ctx, core.ActionUpdate, rec.YearMonth)
	return rec, nil
}

// Delete removes one month. Only presence of the key is checked.
func (s *RecordService) Delete(ctx context.Context, yearMonth string) error {
	if yearMonth == "" {
		return core.NewValidationError("yearMonth", "missing yearMonth")
	}

	n, err := s.store.DeleteRecord(ctx, yearMonth)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	s.logger.InfoContext(ctx, "Record deleted",
		applog.NewFields().WithRecord(yearMonth, string(core.ActionDelete)).ToSlice()...)
	s.publish(ctx, core.ActionDelete, yearMonth)
	return nil
}

func (s *RecordService) publish(ctx context.Context, action core.ChangeAction, yearMonth string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordChange(ctx, action, yearMonth); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record change",
			applog.NewFields().
				WithRecord(yearMonth, string(action)).
				WithOperation(applog.OpPublish).
				WithError(err, applog.ErrorTypeNetwork).
				ToSlice()...)
	}
}

// IsNotFound reports whether err means the addressed month does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
