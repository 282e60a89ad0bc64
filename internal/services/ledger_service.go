// Package services orchestrates the ledger engine with the backup queue.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/ledger"
)

// LedgerService fronts the store for the HTTP layer and publishes a backup
// notification for every expense that reaches persistent storage. The queue
// is optional: without an AMQP client every operation still succeeds.
type LedgerService struct {
	store      *ledger.Store
	amqpClient *amqp.Client
}

func NewLedgerService(store *ledger.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Store exposes the underlying engine for queries.
func (s *LedgerService) Store() *ledger.Store {
	return s.store
}

// AddExpenses saves daily entries and queues them for backup.
func (s *LedgerService) AddExpenses(ctx context.Context, records []core.ExpenseRecord) ([]core.ExpenseRecord, error) {
	stored, err := s.store.AddExpenses(ctx, records)
	if err != nil {
		return nil, err
	}
	s.publishBackups(ctx, stored)
	return stored, nil
}

// SaveInvoice rewrites an invoice's lines and queues the fresh records.
func (s *LedgerService) SaveInvoice(ctx context.Context, invoiceID string, items []core.ExpenseRecord) ([]core.ExpenseRecord, error) {
	stored, err := s.store.ReplaceInvoice(ctx, invoiceID, items)
	if err != nil {
		return nil, err
	}
	s.publishBackups(ctx, stored)
	return stored, nil
}

func (s *LedgerService) publishBackups(ctx context.Context, records []core.ExpenseRecord) {
	if s.amqpClient == nil {
		return
	}
	for _, e := range records {
		if err := s.amqpClient.PublishExpenseBackup(ctx, e.ID); err != nil {
			// the record is saved locally; backup is best-effort
			slog.ErrorContext(ctx, "Failed to publish backup message",
				"id", e.ID, "error", err)
		}
	}
}

// Close releases the AMQP connection if one was configured.
func (s *LedgerService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp client: %w", err)
		}
	}
	return nil
}
