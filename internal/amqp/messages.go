package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds understood by the backup worker.
const (
	KindExpense = "expense"
)

// BackupMessage is the lightweight notification published after a record is
// saved. It carries only the record id; the worker fetches the full record
// from the database so the queue never holds stale copies.
type BackupMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseBackupMessage creates a backup notification for one expense.
func NewExpenseBackupMessage(id string) *BackupMessage {
	return &BackupMessage{
		Kind:      KindExpense,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// Validate rejects messages a worker cannot act on.
func (m *BackupMessage) Validate() error {
	if m.Kind != KindExpense {
		return fmt.Errorf("unknown message kind %q", m.Kind)
	}
	if m.ID == "" {
		return fmt.Errorf("message is missing a record id")
	}
	return nil
}

// ToJSON converts the message to JSON bytes.
func (m *BackupMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BackupMessageFromJSON creates a message from JSON bytes.
func BackupMessageFromJSON(data []byte) (*BackupMessage, error) {
	var msg BackupMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
