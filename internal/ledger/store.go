// Package ledger implements the bookkeeping engine: it owns the expense,
// income, and customer collections in memory, mirrors every mutation to a
// Persister, and provides the aggregation and invoice-grouping queries the
// UI renders. The UI layer never mutates the collections directly.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"hisab/internal/core"
)

// Store holds the record collections. All mutations go through its methods;
// each mutating method persists the touched collection before returning.
// A persistence failure leaves the in-memory state authoritative for the
// rest of the session and surfaces a core.ErrPersistence to the caller.
type Store struct {
	mu        sync.Mutex
	persister Persister
	expenses  []core.ExpenseRecord
	income    []core.IncomeRecord
	customers []core.Customer
}

// Open loads all three collections from the persister.
func Open(ctx context.Context, p Persister) (*Store, error) {
	expenses, err := p.LoadExpenses(ctx)
	if err != nil {
		return nil, persistErr("load expenses", err)
	}
	income, err := p.LoadIncome(ctx)
	if err != nil {
		return nil, persistErr("load income", err)
	}
	customers, err := p.LoadCustomers(ctx)
	if err != nil {
		return nil, persistErr("load customers", err)
	}

	slog.InfoContext(ctx, "Ledger loaded",
		"expenses", len(expenses),
		"income", len(income),
		"customers", len(customers))

	return &Store{
		persister: p,
		expenses:  expenses,
		income:    income,
		customers: customers,
	}, nil
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrPersistence, op, err)
}

// AddExpenses validates and appends the given records, returning them with
// their assigned ids. Callers must have filtered zero-amount lines already;
// an empty list is a validation error.
func (s *Store) AddExpenses(ctx context.Context, records []core.ExpenseRecord) ([]core.ExpenseRecord, error) {
	if len(records) == 0 {
		return nil, core.ErrNoEntries
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = core.NewID()
		}
		if err := records[i].Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, records...)
	if err := s.persister.SaveExpenses(ctx, s.expenses); err != nil {
		return records, persistErr("save expenses", err)
	}
	return records, nil
}

// RemoveExpense deletes the record with the given id. Removing an absent id
// is a no-op so the operation can be safely repeated.
func (s *Store) RemoveExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.expenses[:0]
	removed := false
	for _, e := range s.expenses {
		if e.ID == id {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return nil
	}
	s.expenses = kept
	if err := s.persister.SaveExpenses(ctx, s.expenses); err != nil {
		return persistErr("save expenses", err)
	}
	return nil
}

// RemoveExpensesByInvoice deletes every record carrying the given invoice
// id. Idempotent: no matching records means no write.
func (s *Store) RemoveExpensesByInvoice(ctx context.Context, invoiceID string) error {
	if invoiceID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.removeInvoiceLocked(invoiceID) {
		return nil
	}
	if err := s.persister.SaveExpenses(ctx, s.expenses); err != nil {
		return persistErr("save expenses", err)
	}
	return nil
}

func (s *Store) removeInvoiceLocked(invoiceID string) bool {
	kept := s.expenses[:0]
	removed := false
	for _, e := range s.expenses {
		if e.InvoiceID == invoiceID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	s.expenses = kept
	return removed
}

// ReplaceInvoice removes every expense under invoiceID and inserts one
// fresh record per line item, all stamped with invoiceID. This is the only
// path that mutates an invoice; passing a fresh id duplicates instead of
// editing. The rewrite is a single collection save.
func (s *Store) ReplaceInvoice(ctx context.Context, invoiceID string, items []core.ExpenseRecord) ([]core.ExpenseRecord, error) {
	if invoiceID == "" {
		return nil, fmt.Errorf("%w: empty invoice id", core.ErrValidation)
	}
	if len(items) == 0 {
		return nil, core.ErrNoEntries
	}
	for i := range items {
		items[i].ID = core.NewID()
		items[i].InvoiceID = invoiceID
		if err := items[i].Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeInvoiceLocked(invoiceID)
	s.expenses = append(s.expenses, items...)
	if err := s.persister.SaveExpenses(ctx, s.expenses); err != nil {
		return items, persistErr("save expenses", err)
	}
	return items, nil
}

// AddIncome validates and appends one income record.
func (s *Store) AddIncome(ctx context.Context, rec core.IncomeRecord) (core.IncomeRecord, error) {
	if rec.ID == "" {
		rec.ID = core.NewID()
	}
	if err := rec.Validate(); err != nil {
		return core.IncomeRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.income = append(s.income, rec)
	if err := s.persister.SaveIncome(ctx, s.income); err != nil {
		return core.IncomeRecord{}, persistErr("save income", err)
	}
	return rec, nil
}

// UpdateIncome replaces the record with the given id in full, keeping the id.
func (s *Store) UpdateIncome(ctx context.Context, id string, rec core.IncomeRecord) error {
	rec.ID = id
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.income {
		if s.income[i].ID == id {
			s.income[i] = rec
			if err := s.persister.SaveIncome(ctx, s.income); err != nil {
				return persistErr("save income", err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: income %s", core.ErrNotFound, id)
}

// RemoveIncome deletes the record with the given id.
func (s *Store) RemoveIncome(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.income[:0]
	removed := false
	for _, r := range s.income {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	s.income = kept
	if !removed {
		return fmt.Errorf("%w: income %s", core.ErrNotFound, id)
	}
	if err := s.persister.SaveIncome(ctx, s.income); err != nil {
		return persistErr("save income", err)
	}
	return nil
}

// AddCustomer generates an id and creation timestamp and stores the customer.
func (s *Store) AddCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}
	c.ID = core.NewID()
	c.Name = strings.TrimSpace(c.Name)
	c.CreatedAt = time.Now()
	c.UpdatedAt = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = append(s.customers, c)
	if err := s.persister.SaveCustomers(ctx, s.customers); err != nil {
		return core.Customer{}, persistErr("save customers", err)
	}
	return c, nil
}

// UpdateCustomer replaces the editable fields of an existing customer,
// preserving id and creation time and stamping UpdatedAt.
func (s *Store) UpdateCustomer(ctx context.Context, id string, fields core.Customer) error {
	if err := fields.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.customers {
		if s.customers[i].ID != id {
			continue
		}
		now := time.Now()
		fields.ID = id
		fields.Name = strings.TrimSpace(fields.Name)
		fields.CreatedAt = s.customers[i].CreatedAt
		fields.UpdatedAt = &now
		s.customers[i] = fields
		if err := s.persister.SaveCustomers(ctx, s.customers); err != nil {
			return persistErr("save customers", err)
		}
		return nil
	}
	return fmt.Errorf("%w: customer %s", core.ErrNotFound, id)
}

// RemoveCustomer deletes a customer and nulls the CustomerID reference on
// any expense that pointed at it. Expenses are the durable financial record
// and are never cascade-deleted.
func (s *Store) RemoveCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.customers[:0]
	removed := false
	for _, c := range s.customers {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	s.customers = kept
	if !removed {
		return fmt.Errorf("%w: customer %s", core.ErrNotFound, id)
	}

	// Clear references before touching the persister so the in-memory
	// state is consistent even when a save fails mid-way.
	cleared := false
	for i := range s.expenses {
		if s.expenses[i].CustomerID == id {
			s.expenses[i].CustomerID = ""
			cleared = true
		}
	}

	if err := s.persister.SaveCustomers(ctx, s.customers); err != nil {
		return persistErr("save customers", err)
	}
	if cleared {
		if err := s.persister.SaveExpenses(ctx, s.expenses); err != nil {
			return persistErr("save expenses", err)
		}
	}
	return nil
}

// Expenses returns a copy of the expense collection in insertion order.
func (s *Store) Expenses() []core.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExpenseRecord(nil), s.expenses...)
}

// Income returns a copy of the income collection in insertion order.
func (s *Store) Income() []core.IncomeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.IncomeRecord(nil), s.income...)
}

// Customers returns a copy of the customer collection in insertion order.
func (s *Store) Customers() []core.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Customer(nil), s.customers...)
}

// Customer looks up a customer by id.
func (s *Store) Customer(id string) (core.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return core.Customer{}, false
}

// IncomeRecord looks up an income record by id.
func (s *Store) IncomeRecord(id string) (core.IncomeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.income {
		if r.ID == id {
			return r, true
		}
	}
	return core.IncomeRecord{}, false
}
