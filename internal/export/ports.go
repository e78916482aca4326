// Package export defines the port for shipping transactions to an external
// spreadsheet, plus an in-memory implementation for tests and local runs.
package export

import (
	"context"
	"sync"

	"monedero/internal/core"
)

// TransactionExporter appends one transaction row to the export destination
// and returns a destination-specific row reference.
type TransactionExporter interface {
	Append(ctx context.Context, t core.Transaction) (string, error)
	Remove(ctx context.Context, id string) error
}

// MemoryExporter collects exported rows in memory.
type MemoryExporter struct {
	mu   sync.Mutex
	rows []core.Transaction
}

func NewMemoryExporter() *MemoryExporter {
	return &MemoryExporter{}
}

func (m *MemoryExporter) Append(_ context.Context, t core.Transaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, t)
	return t.ID, nil
}

func (m *MemoryExporter) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of everything exported so far.
func (m *MemoryExporter) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, len(m.rows))
	copy(out, m.rows)
	return out
}
