package testutil

import (
	"sync/atomic"

	"github.com/input-output-hk/s3-checksum/s3types"
)

// MockProgressTracker records progress events. It is safe for concurrent use.
type MockProgressTracker struct {
	bytes     atomic.Int64
	items     atomic.Int64
	failed    atomic.Int64
	completed atomic.Bool
}

// AddBytes records hashed bytes.
func (m *MockProgressTracker) AddBytes(n int64) {
	m.bytes.Add(n)
}

// ItemDone records a processed item.
func (m *MockProgressTracker) ItemDone(failed bool) {
	m.items.Add(1)
	if failed {
		m.failed.Add(1)
	}
}

// Complete marks the run as finished.
func (m *MockProgressTracker) Complete() {
	m.completed.Store(true)
}

// Bytes returns the recorded byte total.
func (m *MockProgressTracker) Bytes() int64 { return m.bytes.Load() }

// Items returns the number of processed items.
func (m *MockProgressTracker) Items() int64 { return m.items.Load() }

// Failed returns the number of failed items.
func (m *MockProgressTracker) Failed() int64 { return m.failed.Load() }

// Completed reports whether Complete was called.
func (m *MockProgressTracker) Completed() bool { return m.completed.Load() }

var _ s3types.ProgressTracker = (*MockProgressTracker)(nil)
