// Package memory is an in-process RecordMirror used as a test fake.
package memory

import (
	"context"
	"sync"

	"finboard/internal/core"
)

type Mirror struct {
	mu           sync.Mutex
	records      []core.FinancialRecord
	replacements int
	failWith     error
}

func New() *Mirror {
	return &Mirror{}
}

// ReplaceAll stores a copy of records.
func (m *Mirror) ReplaceAll(_ context.Context, records []core.FinancialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.records = append([]core.FinancialRecord(nil), records...)
	m.replacements++
	return nil
}

// Snapshot returns what the last ReplaceAll wrote.
func (m *Mirror) Snapshot() []core.FinancialRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.FinancialRecord(nil), m.records...)
}

// Replacements counts successful ReplaceAll calls.
func (m *Mirror) Replacements() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replacements
}

// FailWith makes subsequent ReplaceAll calls return err. nil restores normal behavior.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}
