package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"hisab/internal/core"
)

func newTestDB(t *testing.T) *SQLitePersister {
	t.Helper()
	p, err := NewSQLitePersister(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open sqlite persister: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSQLitePersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)

	want := sampleExpenses()
	if err := p.SaveExpenses(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.LoadExpenses(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertExpensesEqual(t, want, got)
}

func TestSQLitePersisterRewriteReplacesRows(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)

	if err := p.SaveExpenses(ctx, sampleExpenses()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	remaining := sampleExpenses()[:1]
	if err := p.SaveExpenses(ctx, remaining); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := p.LoadExpenses(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("expected only e1 to survive, got %+v", got)
	}
}

func TestSQLitePersisterPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)

	// later date first: load order must follow position, not date
	records := []core.ExpenseRecord{
		{ID: "a", Date: "2025-06-20", Category: core.CategoryStorage, Item: "ice", Amount: core.Money{Cents: 100}},
		{ID: "b", Date: "2025-06-01", Category: core.CategoryLabor, Item: "workers", Amount: core.Money{Cents: 200}},
	}
	if err := p.SaveExpenses(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.LoadExpenses(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("insertion order lost: %+v", got)
	}
}

func TestSQLitePersisterExpenseByID(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)

	if err := p.SaveExpenses(ctx, sampleExpenses()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.Expense(ctx, "e2")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.InvoiceID != "INV-202506-001" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if _, err := p.Expense(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSQLitePersisterIncomeRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)

	want := []core.IncomeRecord{
		{ID: "i1", Date: "2025-06-02", Type: core.IncomeSales, Source: "bazar", Amount: core.Money{Cents: 120000}, Description: "morning sale"},
	}
	if err := p.SaveIncome(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.LoadIncome(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
