package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/core"

	_ "modernc.org/sqlite"
)

// SQLitePersister stores the three ledger collections in SQLite. Each save
// rewrites the whole collection inside a transaction; an explicit position
// column keeps insertion order stable across loads, which the invoice view
// relies on for its date rule.
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLitePersister opens (creating if needed) the database file and runs
// pending migrations.
func NewSQLitePersister(dbPath string) (*SQLitePersister, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLitePersister{db: db}, nil
}

func (p *SQLitePersister) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *SQLitePersister) LoadExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, date, category, item, amount_cents, quantity,
		       unit_price_cents, unit, invoice_id, customer_id
		FROM expenses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Expense fetches a single record by id. The backup worker uses this to
// resolve message ids without loading the full collection.
func (p *SQLitePersister) Expense(ctx context.Context, id string) (core.ExpenseRecord, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, date, category, item, amount_cents, quantity,
		       unit_price_cents, unit, invoice_id, customer_id
		FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	return e, err
}

func (p *SQLitePersister) SaveExpenses(ctx context.Context, records []core.ExpenseRecord) error {
	return p.rewrite(ctx, "expenses", func(tx *sql.Tx) error {
		for i, e := range records {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO expenses (id, position, date, category, item, amount_cents,
				                      quantity, unit_price_cents, unit, invoice_id, customer_id)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, i, string(e.Date), string(e.Category), e.Item, e.Amount.Cents,
				e.Quantity.String(), e.UnitPrice.Cents, e.Unit, e.InvoiceID, e.CustomerID)
			if err != nil {
				return fmt.Errorf("insert expense %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

func (p *SQLitePersister) LoadIncome(ctx context.Context) ([]core.IncomeRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, date, type, source, amount_cents, description
		FROM income ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load income: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeRecord
	for rows.Next() {
		var r core.IncomeRecord
		var date, typ string
		if err := rows.Scan(&r.ID, &date, &typ, &r.Source, &r.Amount.Cents, &r.Description); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		r.Date = core.Date(date)
		r.Type = core.IncomeType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *SQLitePersister) SaveIncome(ctx context.Context, records []core.IncomeRecord) error {
	return p.rewrite(ctx, "income", func(tx *sql.Tx) error {
		for i, r := range records {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO income (id, position, date, type, source, amount_cents, description)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ID, i, string(r.Date), string(r.Type), r.Source, r.Amount.Cents, r.Description)
			if err != nil {
				return fmt.Errorf("insert income %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

func (p *SQLitePersister) LoadCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, phone, address, email, notes, created_at, updated_at
		FROM customers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	defer rows.Close()

	var out []core.Customer
	for rows.Next() {
		var c core.Customer
		var created string
		var updated sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Email, &c.Notes, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse customer %s created_at: %w", c.ID, err)
		}
		if updated.Valid {
			t, err := time.Parse(time.RFC3339Nano, updated.String)
			if err != nil {
				return nil, fmt.Errorf("parse customer %s updated_at: %w", c.ID, err)
			}
			c.UpdatedAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *SQLitePersister) SaveCustomers(ctx context.Context, customers []core.Customer) error {
	return p.rewrite(ctx, "customers", func(tx *sql.Tx) error {
		for i, c := range customers {
			var updated any
			if c.UpdatedAt != nil {
				updated = c.UpdatedAt.Format(time.RFC3339Nano)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO customers (id, position, name, phone, address, email, notes, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				c.ID, i, c.Name, c.Phone, c.Address, c.Email, c.Notes,
				c.CreatedAt.Format(time.RFC3339Nano), updated)
			if err != nil {
				return fmt.Errorf("insert customer %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// MarkBackedUp records that the expense reached the backup sheet. The mark
// lives in its own table so collection rewrites do not erase it.
func (p *SQLitePersister) MarkBackedUp(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO expense_backups (expense_id, backed_up_at) VALUES (?, ?)
		ON CONFLICT(expense_id) DO UPDATE SET backed_up_at = excluded.backed_up_at`,
		id, time.Now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("mark expense %s backed up: %w", id, err)
	}
	return nil
}

// PendingBackups returns up to limit expenses that never reached the backup
// sheet, oldest first.
func (p *SQLitePersister) PendingBackups(ctx context.Context, limit int) ([]core.ExpenseRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT e.id, e.date, e.category, e.item, e.amount_cents, e.quantity,
		       e.unit_price_cents, e.unit, e.invoice_id, e.customer_id
		FROM expenses e
		LEFT JOIN expense_backups b ON e.id = b.expense_id
		WHERE b.expense_id IS NULL
		ORDER BY e.position
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("load pending backups: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// rewrite clears a table and refills it within one transaction.
func (p *SQLitePersister) rewrite(ctx context.Context, table string, fill func(*sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rewrite of %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := fill(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rewrite of %s: %w", table, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.ExpenseRecord, error) {
	var e core.ExpenseRecord
	var date, category, quantity string
	if err := row.Scan(&e.ID, &date, &category, &e.Item, &e.Amount.Cents,
		&quantity, &e.UnitPrice.Cents, &e.Unit, &e.InvoiceID, &e.CustomerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ExpenseRecord{}, err
		}
		return core.ExpenseRecord{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Date = core.Date(date)
	e.Category = core.Category(category)
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("parse expense %s quantity: %w", e.ID, err)
	}
	e.Quantity = q
	return e, nil
}
