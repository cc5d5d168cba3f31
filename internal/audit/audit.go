// Package audit records what happened to every signal and order during a run.
package audit

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSignal        Kind = "signal"
	KindRebalance     Kind = "rebalance"
	KindOrderAdmitted Kind = "order_admitted"
	KindOrderRejected Kind = "order_rejected"
	KindOrderDropped  Kind = "order_dropped"
)

// Entry is one audit record. Fields not relevant to the Kind stay empty.
type Entry struct {
	Timestamp      time.Time
	Kind           Kind
	Symbol         string
	Direction      string
	Side           string
	OrderType      string
	OrderID        string
	Quantity       float64
	ReferencePrice float64
	Source         string
	Reason         string
	Fields         map[string]string
}

// Recorder stores audit entries.
type Recorder interface {
	Record(entry Entry) error
}

// MemoryRecorder keeps entries in a slice.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record implements Recorder.
func (m *MemoryRecorder) Record(entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)

	return nil
}

// Entries returns a copy of everything recorded, in order.
func (m *MemoryRecorder) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)

	return out
}

// Count returns how many entries of kind were recorded.
func (m *MemoryRecorder) Count(kind Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0

	for _, entry := range m.entries {
		if entry.Kind == kind {
			n++
		}
	}

	return n
}
