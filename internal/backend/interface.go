// Package backend selects and constructs the persistence backend the
// ledger engine runs on.
package backend

import (
	"context"

	"hisab/internal/ledger"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the constructed persister and an optional cleanup.
type Result struct {
	Persister ledger.Persister
	Cleanup   CleanupFunc
}

// Factory creates persisters based on configuration.
type Factory interface {
	CreatePersister(ctx context.Context, config Config) (*Result, error)
}

// Config holds everything persister construction needs.
type Config struct {
	Type Type

	// file backend
	DataDirectory string

	// sqlite backend
	SQLiteDBPath string
}

// Type names a persistence backend.
type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
