package services

import (
	"context"
	"errors"
	"testing"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

type nopPersister struct{}

func (nopPersister) LoadExpenses(context.Context) ([]core.ExpenseRecord, error) { return nil, nil }
func (nopPersister) LoadIncome(context.Context) ([]core.IncomeRecord, error)    { return nil, nil }
func (nopPersister) LoadCustomers(context.Context) ([]core.Customer, error)     { return nil, nil }
func (nopPersister) SaveExpenses(context.Context, []core.ExpenseRecord) error   { return nil }
func (nopPersister) SaveIncome(context.Context, []core.IncomeRecord) error      { return nil }
func (nopPersister) SaveCustomers(context.Context, []core.Customer) error       { return nil }

func newService(t *testing.T) *LedgerService {
	t.Helper()
	store, err := ledger.Open(context.Background(), nopPersister{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return NewLedgerService(store, nil)
}

func TestAddExpensesWithoutQueue(t *testing.T) {
	svc := newService(t)
	stored, err := svc.AddExpenses(context.Background(), []core.ExpenseRecord{{
		Date:     "2025-06-01",
		Category: core.CategoryStorage,
		Item:     "ice",
		Amount:   core.Money{Cents: 50000},
	}})
	if err != nil {
		t.Fatalf("add expenses: %v", err)
	}
	if len(stored) != 1 || stored[0].ID == "" {
		t.Fatalf("expected stored record with id, got %+v", stored)
	}
}

func TestAddExpensesPropagatesValidation(t *testing.T) {
	svc := newService(t)
	_, err := svc.AddExpenses(context.Background(), nil)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSaveInvoiceStampsID(t *testing.T) {
	svc := newService(t)
	stored, err := svc.SaveInvoice(context.Background(), "INV-202506-001", []core.ExpenseRecord{{
		Date:     "2025-06-05",
		Category: core.CategoryPackaging,
		Item:     "cork sheet",
		Amount:   core.Money{Cents: 12500},
	}})
	if err != nil {
		t.Fatalf("save invoice: %v", err)
	}
	if stored[0].InvoiceID != "INV-202506-001" {
		t.Fatalf("invoice id not stamped: %+v", stored[0])
	}
}

func TestCloseWithoutQueue(t *testing.T) {
	if err := newService(t).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
