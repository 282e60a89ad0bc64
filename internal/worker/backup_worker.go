// Package worker mirrors saved expenses to the configured backup sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/sheets"
)

// BackupStore is the slice of the storage layer the worker needs: fetch a
// record by id, list records never backed up, and mark success.
type BackupStore interface {
	Expense(ctx context.Context, id string) (core.ExpenseRecord, error)
	PendingBackups(ctx context.Context, limit int) ([]core.ExpenseRecord, error)
	MarkBackedUp(ctx context.Context, id string) error
}

// BackupWorker consumes backup messages and appends the referenced records
// to the sheet. A periodic pending scan catches records whose messages were
// lost while the broker or worker was down.
type BackupWorker struct {
	storage   BackupStore
	sheets    sheets.RowAppender
	batchSize int
}

func NewBackupWorker(storage BackupStore, appender sheets.RowAppender, batchSize int) *BackupWorker {
	return &BackupWorker{
		storage:   storage,
		sheets:    appender,
		batchSize: batchSize,
	}
}

// HandleBackupMessage processes a single message from the queue. The record
// is fetched fresh from storage so the sheet always receives the current
// version, not whatever the message saw at publish time.
func (w *BackupWorker) HandleBackupMessage(ctx context.Context, msg *amqp.BackupMessage) error {
	slog.InfoContext(ctx, "Processing backup message", "id", msg.ID, "kind", msg.Kind)

	expense, err := w.storage.Expense(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	return w.backupExpense(ctx, expense)
}

// ProcessPending pushes a batch of never-backed-up expenses to the sheet.
// This is the safety net for lost messages.
func (w *BackupWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingBackups(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending backups: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending backups", "count", len(pending))

	for _, expense := range pending {
		if err := w.backupExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to back up expense", "id", expense.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending batch once at worker start, to
// recover from downtime quickly.
func (w *BackupWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.PendingBackups(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending backups for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending backups found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending backups on startup", "count", len(pending))

	synced := 0
	failed := 0
	for _, expense := range pending {
		if err := w.backupExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to back up expense during startup", "id", expense.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup backup check completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *BackupWorker) backupExpense(ctx context.Context, expense core.ExpenseRecord) error {
	ref, err := w.sheets.AppendExpense(ctx, expense)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkBackedUp(ctx, expense.ID); err != nil {
		// the append worked; next pending scan will retry the mark
		slog.ErrorContext(ctx, "Failed to mark expense as backed up", "id", expense.ID, "error", err)
	}

	slog.InfoContext(ctx, "Backed up expense",
		"id", expense.ID,
		"sheets_ref", ref,
		"item", expense.Item,
		"amount_cents", expense.Amount.Cents)

	return nil
}
