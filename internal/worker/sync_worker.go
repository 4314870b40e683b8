package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"afftrack/internal/amqp"
	"afftrack/internal/core"
	"afftrack/internal/metrics"
	"afftrack/internal/sheets"
)

// SyncStore is the storage surface the worker needs.
type SyncStore interface {
	GetConversion(ctx context.Context, id string) (core.Conversion, error)
	GetPendingSyncConversions(ctx context.Context, limit int) ([]core.Conversion, error)
	MarkConversionSynced(ctx context.Context, id string) error
	MarkConversionSyncError(ctx context.Context, id string) error
}

// SyncWorker exports recorded conversions from SQLite to the spreadsheet.
type SyncWorker struct {
	store     SyncStore
	writer    sheets.ConversionWriter
	metrics   *metrics.Metrics
	batchSize int
}

func NewSyncWorker(store SyncStore, writer sheets.ConversionWriter, m *metrics.Metrics, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		store:     store,
		writer:    writer,
		metrics:   m,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single conversion sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ConversionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	conv, err := w.store.GetConversion(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get conversion from storage: %w", err)
	}

	if err := w.syncConversion(ctx, conv); err != nil {
		return fmt.Errorf("sync conversion to sheets: %w", err)
	}
	return nil
}

// ProcessPendingConversions exports conversions that never made it onto the
// queue. Backup mechanism for lost AMQP messages.
func (w *SyncWorker) ProcessPendingConversions(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncConversions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending conversions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending conversions", "count", len(pending))

	for _, conv := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.syncConversion(ctx, conv); err != nil {
			slog.ErrorContext(ctx, "Failed to sync conversion", "id", conv.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains the pending backlog when the worker starts, which
// recovers from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncConversions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending conversions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending conversions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending conversions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, conv := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.syncConversion(ctx, conv); err != nil {
			slog.ErrorContext(ctx, "Failed to sync conversion during startup",
				"id", conv.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncConversion(ctx context.Context, conv core.Conversion) error {
	start := time.Now()

	ref, err := w.writer.Append(ctx, conv)
	if err != nil {
		if markErr := w.store.MarkConversionSyncError(ctx, conv.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", conv.ID, "error", markErr)
		}
		if w.metrics != nil {
			w.metrics.RecordSync("error", time.Since(start).Seconds())
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.store.MarkConversionSynced(ctx, conv.ID); err != nil {
		// The export itself worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", conv.ID, "error", err)
	}

	if w.metrics != nil {
		w.metrics.RecordSync("success", time.Since(start).Seconds())
	}
	slog.InfoContext(ctx, "Synced conversion",
		"id", conv.ID,
		"sheets_ref", ref,
		"client_id", conv.AffiliateLink.ClientID,
		"amount", conv.Amount)

	return nil
}
