// Package storage provides the persisters behind the ledger: a plain
// JSON-file backend for single-user installs and a SQLite backend for
// installs that also run the backup worker.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hisab/internal/core"
)

const (
	expensesFile  = "expenses.json"
	incomeFile    = "income.json"
	customersFile = "customers.json"
)

// FilePersister stores each collection as one JSON array file in a data
// directory. Every save rewrites the whole file, so the newest write wins
// and record order in the file is exactly insertion order.
type FilePersister struct {
	dir string
}

// NewFilePersister creates the data directory if needed.
func NewFilePersister(dir string) (*FilePersister, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

func (p *FilePersister) LoadExpenses(_ context.Context) ([]core.ExpenseRecord, error) {
	var out []core.ExpenseRecord
	if err := p.readJSON(expensesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *FilePersister) LoadIncome(_ context.Context) ([]core.IncomeRecord, error) {
	var out []core.IncomeRecord
	if err := p.readJSON(incomeFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *FilePersister) LoadCustomers(_ context.Context) ([]core.Customer, error) {
	var out []core.Customer
	if err := p.readJSON(customersFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *FilePersister) SaveExpenses(_ context.Context, records []core.ExpenseRecord) error {
	return p.writeJSON(expensesFile, records)
}

func (p *FilePersister) SaveIncome(_ context.Context, records []core.IncomeRecord) error {
	return p.writeJSON(incomeFile, records)
}

func (p *FilePersister) SaveCustomers(_ context.Context, customers []core.Customer) error {
	return p.writeJSON(customersFile, customers)
}

func (p *FilePersister) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(p.dir, name))
	if os.IsNotExist(err) {
		// first run, nothing stored yet
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeJSON writes to a temp file in the same directory and renames it
// over the target, so a crash mid-write never leaves a truncated file.
func (p *FilePersister) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(p.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(p.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
