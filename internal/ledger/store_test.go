package ledger

import (
	"context"
	"errors"
	"testing"

	"hisab/internal/core"
)

// memPersister keeps the saved collections in memory and can be told to
// fail writes to exercise the persistence error path.
type memPersister struct {
	expenses      []core.ExpenseRecord
	income        []core.IncomeRecord
	customers     []core.Customer
	failWrite     bool
	failCustomers bool
	saves         int
}

func (p *memPersister) LoadExpenses(context.Context) ([]core.ExpenseRecord, error) {
	return append([]core.ExpenseRecord(nil), p.expenses...), nil
}

func (p *memPersister) LoadIncome(context.Context) ([]core.IncomeRecord, error) {
	return append([]core.IncomeRecord(nil), p.income...), nil
}

func (p *memPersister) LoadCustomers(context.Context) ([]core.Customer, error) {
	return append([]core.Customer(nil), p.customers...), nil
}

func (p *memPersister) SaveExpenses(_ context.Context, records []core.ExpenseRecord) error {
	if p.failWrite {
		return errors.New("disk full")
	}
	p.saves++
	p.expenses = append([]core.ExpenseRecord(nil), records...)
	return nil
}

func (p *memPersister) SaveIncome(_ context.Context, records []core.IncomeRecord) error {
	if p.failWrite {
		return errors.New("disk full")
	}
	p.saves++
	p.income = append([]core.IncomeRecord(nil), records...)
	return nil
}

func (p *memPersister) SaveCustomers(_ context.Context, customers []core.Customer) error {
	if p.failWrite || p.failCustomers {
		return errors.New("disk full")
	}
	p.saves++
	p.customers = append([]core.Customer(nil), customers...)
	return nil
}

func newTestStore(t *testing.T) (*Store, *memPersister) {
	t.Helper()
	p := &memPersister{}
	s, err := Open(context.Background(), p)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s, p
}

func expense(date core.Date, cat core.Category, item string, cents int64) core.ExpenseRecord {
	return core.ExpenseRecord{
		Date:     date,
		Category: cat,
		Item:     item,
		Amount:   core.Money{Cents: cents},
	}
}

func TestAddExpensesRejectsEmptyList(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddExpenses(context.Background(), nil)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddExpensesAssignsIDsAndPersists(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddExpenses(ctx, []core.ExpenseRecord{
		expense("2025-06-01", core.CategoryStorage, "ice", 50000),
		expense("2025-06-01", core.CategoryLabor, "workers", 30000),
	})
	if err != nil {
		t.Fatalf("add expenses: %v", err)
	}
	got := s.Expenses()
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(got))
	}
	for _, e := range got {
		if e.ID == "" {
			t.Fatalf("expected generated id")
		}
	}
	if len(p.expenses) != 2 {
		t.Fatalf("expected persisted expenses, got %d", len(p.expenses))
	}
}

func TestRemoveExpenseIsIdempotent(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()

	if _, err := s.AddExpenses(ctx, []core.ExpenseRecord{expense("2025-06-01", core.CategoryOther, "misc", 100)}); err != nil {
		t.Fatalf("add: %v", err)
	}
	id := s.Expenses()[0].ID

	if err := s.RemoveExpense(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	saves := p.saves
	// second removal matches nothing: no error, no write
	if err := s.RemoveExpense(ctx, id); err != nil {
		t.Fatalf("repeat remove: %v", err)
	}
	if p.saves != saves {
		t.Fatalf("no-op removal should not persist")
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()
	p.failWrite = true

	_, err := s.AddExpenses(ctx, []core.ExpenseRecord{expense("2025-06-01", core.CategoryStorage, "ice", 500)})
	if !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	// in-memory state stays authoritative for the session
	if len(s.Expenses()) != 1 {
		t.Fatalf("expected expense retained in memory")
	}
}

func TestIncomeLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := s.AddIncome(ctx, core.IncomeRecord{
		Date:   "2025-06-02",
		Type:   core.IncomeSales,
		Source: "bazar",
		Amount: core.Money{Cents: 120000},
	})
	if err != nil {
		t.Fatalf("add income: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected generated id")
	}

	updated := rec
	updated.Amount = core.Money{Cents: 150000}
	updated.Description = "corrected"
	if err := s.UpdateIncome(ctx, rec.ID, updated); err != nil {
		t.Fatalf("update income: %v", err)
	}
	got, ok := s.IncomeRecord(rec.ID)
	if !ok || got.Amount.Cents != 150000 || got.Description != "corrected" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := s.UpdateIncome(ctx, "missing", updated); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := s.RemoveIncome(ctx, rec.ID); err != nil {
		t.Fatalf("remove income: %v", err)
	}
	if err := s.RemoveIncome(ctx, rec.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found on second removal, got %v", err)
	}
}

func TestAddCustomerValidatesName(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddCustomer(context.Background(), core.Customer{Name: "  "})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
}

func TestRemoveCustomerNullsExpenseReference(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c, err := s.AddCustomer(ctx, core.Customer{Name: "Karim Fish Supply"})
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	ref := expense("2025-06-03", core.CategoryTransport, "fish van", 80000)
	ref.CustomerID = c.ID
	if _, err := s.AddExpenses(ctx, []core.ExpenseRecord{ref}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	if err := s.RemoveCustomer(ctx, c.ID); err != nil {
		t.Fatalf("remove customer: %v", err)
	}
	if _, ok := s.Customer(c.ID); ok {
		t.Fatalf("customer should be gone")
	}
	got := s.Expenses()
	if len(got) != 1 {
		t.Fatalf("expense must survive customer deletion")
	}
	if got[0].CustomerID != "" {
		t.Fatalf("expected nulled customer reference, got %q", got[0].CustomerID)
	}
}

func TestRemoveCustomerClearsReferenceWhenSaveFails(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()

	c, err := s.AddCustomer(ctx, core.Customer{Name: "Rahim Traders"})
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	ref := expense("2025-06-04", core.CategoryPackaging, "crates", 25000)
	ref.CustomerID = c.ID
	if _, err := s.AddExpenses(ctx, []core.ExpenseRecord{ref}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	p.failCustomers = true
	err = s.RemoveCustomer(ctx, c.ID)
	if !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	// Memory stays consistent: the customer is gone and nothing still
	// points at its id.
	if _, ok := s.Customer(c.ID); ok {
		t.Fatalf("customer should be gone despite the failed save")
	}
	if got := s.Expenses(); got[0].CustomerID != "" {
		t.Fatalf("expected nulled customer reference, got %q", got[0].CustomerID)
	}
}

func TestRemoveUnreferencedCustomerLeavesExpensesAlone(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()

	c, _ := s.AddCustomer(ctx, core.Customer{Name: "Unlinked"})
	if _, err := s.AddExpenses(ctx, []core.ExpenseRecord{expense("2025-06-03", core.CategoryOther, "misc", 100)}); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	saves := p.saves
	if err := s.RemoveCustomer(ctx, c.ID); err != nil {
		t.Fatalf("remove customer: %v", err)
	}
	// only the customer blob is rewritten
	if p.saves != saves+1 {
		t.Fatalf("expected exactly one save, got %d", p.saves-saves)
	}
}

func TestUpdateCustomerKeepsCreationTime(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c, _ := s.AddCustomer(ctx, core.Customer{Name: "Old Name", Phone: "017"})
	if err := s.UpdateCustomer(ctx, c.ID, core.Customer{Name: "New Name"}); err != nil {
		t.Fatalf("update customer: %v", err)
	}
	got, ok := s.Customer(c.ID)
	if !ok {
		t.Fatalf("customer missing")
	}
	if got.Name != "New Name" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if !got.CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("creation time must be preserved")
	}
	if got.UpdatedAt == nil {
		t.Fatalf("expected UpdatedAt stamp")
	}
}

func TestOpenRestoresPersistedState(t *testing.T) {
	p := &memPersister{
		expenses: []core.ExpenseRecord{expense("2025-01-05", core.CategoryPackaging, "tape", 1500)},
	}
	s, err := Open(context.Background(), p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(s.Expenses()) != 1 {
		t.Fatalf("expected restored expense")
	}
}
