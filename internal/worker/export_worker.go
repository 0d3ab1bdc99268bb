// Package worker mirrors locally saved transactions to the spreadsheet. It
// consumes AMQP sync messages and periodically sweeps the export queue as a
// backup for lost messages.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/export"
	"budgetbuddy/internal/store"
)

// Repository is the storage surface the worker needs. Both the SQLite and
// PostgreSQL repositories satisfy it.
type Repository interface {
	store.TransactionStore
	store.ExportQueue
}

type ExportWorker struct {
	repo      Repository
	appender  export.RowAppender
	deleter   export.RowDeleter
	batchSize int
}

func NewExportWorker(repo Repository, appender export.RowAppender, deleter export.RowDeleter, batchSize int) *ExportWorker {
	return &ExportWorker{
		repo:      repo,
		appender:  appender,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one AMQP message. Save messages fetch the
// current row from the database, so a stale message exports fresh data.
func (w *ExportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "op", msg.Op)

	switch msg.Op {
	case amqp.OpSaved:
		return w.exportTransaction(ctx, msg.ID)
	case amqp.OpDeleted:
		return w.removeRow(ctx, msg.ID)
	default:
		// Drop unknown ops instead of requeueing them forever.
		slog.WarnContext(ctx, "Ignoring unknown sync op", "id", msg.ID, "op", msg.Op)
		return nil
	}
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id int64) error {
	t, err := w.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted between publish and consume.
		slog.InfoContext(ctx, "Transaction gone before export", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	// A re-save arrives with its export flag reset; clear any earlier row for
	// the id first so the sheet keeps one row per transaction.
	if w.deleter != nil {
		if err := w.deleter.DeleteTransactionRow(ctx, id); err != nil {
			return fmt.Errorf("clear previous transaction row: %w", err)
		}
	}

	ref, err := w.appender.AppendTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("append transaction row: %w", err)
	}

	if err := w.repo.MarkExported(ctx, id); err != nil {
		// The export worked; a failed flag only means a redundant re-export,
		// which the clear above keeps from duplicating rows.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction", "id", id, "row_ref", ref)
	return nil
}

func (w *ExportWorker) removeRow(ctx context.Context, id int64) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No row deleter configured, skipping", "id", id)
		return nil
	}
	if err := w.deleter.DeleteTransactionRow(ctx, id); err != nil {
		return fmt.Errorf("delete transaction row: %w", err)
	}
	return nil
}

// ProcessPending sweeps transactions whose export flag is still unset. This
// is the backup path for lost AMQP messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.repo.ListPendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction",
				"id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending batch once at worker start, covering
// downtime while the web app kept accepting writes.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.repo.ListPendingExports(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending exports for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup", "count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export during startup",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}
