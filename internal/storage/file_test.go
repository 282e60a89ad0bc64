package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

func sampleExpenses() []core.ExpenseRecord {
	return []core.ExpenseRecord{
		{
			ID:       "e1",
			Date:     "2025-06-01",
			Category: core.CategoryStorage,
			Item:     "ice",
			Amount:   core.Money{Cents: 50000},
		},
		{
			ID:         "e2",
			Date:       "2025-06-05",
			Category:   core.CategoryPackaging,
			Item:       "cork sheet",
			Quantity:   decimal.NewFromInt(10),
			UnitPrice:  core.Money{Cents: 1250},
			Amount:     core.Money{Cents: 12500},
			Unit:       "pcs",
			InvoiceID:  "INV-202506-001",
			CustomerID: "c1",
		},
	}
}

func TestFilePersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := NewFilePersister(t.TempDir())
	if err != nil {
		t.Fatalf("new persister: %v", err)
	}

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

func TestFilePersisterEmptyDirectory(t *testing.T) {
	ctx := context.Background()
	p, err := NewFilePersister(t.TempDir())
	if err != nil {
		t.Fatalf("new persister: %v", err)
	}
	for name, load := range map[string]func(context.Context) (int, error){
		"expenses": func(ctx context.Context) (int, error) {
			v, err := p.LoadExpenses(ctx)
			return len(v), err
		},
		"income": func(ctx context.Context) (int, error) {
			v, err := p.LoadIncome(ctx)
			return len(v), err
		},
		"customers": func(ctx context.Context) (int, error) {
			v, err := p.LoadCustomers(ctx)
			return len(v), err
		},
	} {
		n, err := load(ctx)
		if err != nil {
			t.Fatalf("load %s from empty dir: %v", name, err)
		}
		if n != 0 {
			t.Fatalf("expected no %s, got %d", name, n)
		}
	}
}

func TestFilePersisterCustomerRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := NewFilePersister(t.TempDir())
	if err != nil {
		t.Fatalf("new persister: %v", err)
	}

	updated := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	want := []core.Customer{
		{
			ID:        "c1",
			Name:      "Karim Fish Supply",
			Phone:     "01712345678",
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			UpdatedAt: &updated,
		},
	}
	if err := p.SaveCustomers(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.LoadCustomers(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(got))
	}
	if got[0].Name != want[0].Name || !got[0].CreatedAt.Equal(want[0].CreatedAt) {
		t.Fatalf("round trip mismatch: %+v", got[0])
	}
	if got[0].UpdatedAt == nil || !got[0].UpdatedAt.Equal(updated) {
		t.Fatalf("updated at not preserved: %+v", got[0].UpdatedAt)
	}
}

func assertExpensesEqual(t *testing.T, want, got []core.ExpenseRecord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if g.ID != w.ID || g.Date != w.Date || g.Category != w.Category || g.Item != w.Item {
			t.Fatalf("record %d identity mismatch: %+v", i, g)
		}
		if g.Amount != w.Amount || g.UnitPrice != w.UnitPrice {
			t.Fatalf("record %d money mismatch: %+v", i, g)
		}
		if !g.Quantity.Equal(w.Quantity) {
			t.Fatalf("record %d quantity mismatch: %s vs %s", i, g.Quantity, w.Quantity)
		}
		if g.Unit != w.Unit || g.InvoiceID != w.InvoiceID || g.CustomerID != w.CustomerID {
			t.Fatalf("record %d link fields mismatch: %+v", i, g)
		}
	}
}
