// Package worker keeps the spreadsheet mirror in step with the database.
package worker

import (
	"context"
	"fmt"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/sheets"
)

// RecordSource loads the admin view of every record.
type RecordSource interface {
	ListRecords(ctx context.Context) ([]core.FinancialRecord, error)
}

// MirrorWorker replays the full dataset into a RecordMirror. Every trigger
// rewrites the whole mirror, so duplicate or reordered events are harmless.
type MirrorWorker struct {
	source RecordSource
	mirror sheets.RecordMirror
	logger *applog.Logger
}

func NewMirrorWorker(source RecordSource, mirror sheets.RecordMirror, logger *applog.Logger) *MirrorWorker {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &MirrorWorker{
		source: source,
		mirror: mirror,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleChange is the AMQP handler. A returned error requeues the message.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing record change",
		applog.FieldMessageID, msg.ID.String(),
		applog.FieldAction, string(msg.Action),
		applog.FieldYearMonth, msg.YearMonth)

	if err := w.Sync(ctx); err != nil {
		return fmt.Errorf("mirror after %s: %w", msg.Action, err)
	}
	return nil
}

// Sync copies the current dataset to the mirror.
func (w *MirrorWorker) Sync(ctx context.Context) error {
	records, err := w.source.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if err := w.mirror.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	w.logger.DebugContext(ctx, "Mirror synced", applog.FieldRecordCount, len(records))
	return nil
}

// RunPeriodic calls Sync every interval until ctx ends. It covers events
// lost while the broker was unreachable. A non-positive interval disables it.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic mirror sync failed",
					applog.NewFields().WithOperation(applog.OpMirror).WithError(err, applog.ErrorTypeNetwork).ToSlice()...)
			}
		}
	}
}
