// Package worker exports fee records from SQLite to Google Sheets.
package worker

import (
	"context"
	"errors"
	"fmt"

	"schoolsite/internal/amqp"
	"schoolsite/internal/core"
	applog "schoolsite/internal/log"
	"schoolsite/internal/ports"
)

var _ amqp.Handler = (*SyncWorker)(nil)

// SyncWorker applies queued fee changes to the spreadsheet. Messages only
// name the record; its current stored state is what gets written.
type SyncWorker struct {
	store  ports.FeeSyncStore
	sheet  ports.FeeSheetWriter
	logger *applog.Logger
}

func NewSyncWorker(store ports.FeeSyncStore, sheet ports.FeeSheetWriter, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncWorker{store: store, sheet: sheet, logger: logger.WithComponent(applog.ComponentWorker)}
}

// HandleFeeSync implements amqp.Handler.
func (w *SyncWorker) HandleFeeSync(ctx context.Context, msg *amqp.FeeSyncMessage) error {
	change, err := w.store.GetFeeChange(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.WarnContext(ctx, "Sync message for unknown fee record, dropping", applog.FieldFeeID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load fee %d: %w", msg.ID, err)
	}
	if change.Record.Version > msg.Version {
		w.logger.DebugContext(ctx, "Exporting newer version than announced",
			applog.FieldFeeID, msg.ID, "announced", msg.Version, applog.FieldVersion, change.Record.Version)
	}
	return w.ExportChange(ctx, change)
}

// HandleFeeDelete implements amqp.Handler.
func (w *SyncWorker) HandleFeeDelete(ctx context.Context, msg *amqp.FeeDeleteMessage) error {
	change, err := w.store.GetFeeChange(ctx, msg.ID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		// the row may still exist in the sheet even if the record is gone
		if err := w.sheet.DeleteFee(ctx, msg.ID); err != nil {
			return fmt.Errorf("clear fee %d: %w", msg.ID, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("load fee %d: %w", msg.ID, err)
	}
	return w.ExportChange(ctx, change)
}

// ExportChange writes or clears the row for c and records the outcome in
// storage. It implements services.ChangeExporter for the periodic sweep.
func (w *SyncWorker) ExportChange(ctx context.Context, c ports.FeeChange) error {
	id := c.Record.ID
	fields := applog.NewFields().Operation(applog.OpSync).
		Fee(id, c.Record.ClassName, c.Record.Category)

	var (
		row int
		err error
	)
	if c.Deleted {
		err = w.sheet.DeleteFee(ctx, id)
	} else {
		row, err = w.sheet.UpsertFee(ctx, c.Record)
	}
	if err != nil {
		if markErr := w.store.MarkFeeSyncError(ctx, id); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", fields.Err(markErr).Args()...)
		}
		return fmt.Errorf("export fee %d: %w", id, err)
	}

	if err := w.store.MarkFeeSynced(ctx, id, c.Record.Version); err != nil {
		// the sheet is already correct; the sweep will rewrite the same row
		w.logger.ErrorContext(ctx, "Failed to mark fee as synced", fields.Err(err).Args()...)
	}

	w.logger.InfoContext(ctx, "Exported fee record",
		append(fields, applog.FieldSheetRow, row, "deleted", c.Deleted,
			applog.FieldTotal, c.Record.WithDerived().TotalAnnual.String())...)
	return nil
}
