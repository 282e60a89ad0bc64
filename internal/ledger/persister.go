package ledger

import (
	"context"

	"hisab/internal/core"
)

// Persister mirrors the engine's collections to durable storage. Each Save
// rewrites one whole collection; there are no partial or batched writes.
// Implementations live in internal/storage (JSON blob files, SQLite).
type Persister interface {
	LoadExpenses(ctx context.Context) ([]core.ExpenseRecord, error)
	LoadIncome(ctx context.Context) ([]core.IncomeRecord, error)
	LoadCustomers(ctx context.Context) ([]core.Customer, error)

	SaveExpenses(ctx context.Context, records []core.ExpenseRecord) error
	SaveIncome(ctx context.Context, records []core.IncomeRecord) error
	SaveCustomers(ctx context.Context, customers []core.Customer) error
}
