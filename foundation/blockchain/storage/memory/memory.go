// Package memory implements snapshot storage in memory.
package memory

import (
	"bytes"
	"sync"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/storage"
)

// Memory represents the storage implementation for keeping the latest
// snapshot in memory. This implements the storage.Storage interface.
type Memory struct {
	mu       sync.RWMutex
	snapshot *storage.Snapshot
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Write replaces the stored snapshot.
func (m *Memory) Write(snapshot storage.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot.Document = bytes.Clone(snapshot.Document)
	m.snapshot = &snapshot

	return nil
}

// Read returns the stored snapshot.
func (m *Memory) Read() (storage.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return storage.Snapshot{}, storage.ErrNoSnapshot
	}

	snapshot := *m.snapshot
	snapshot.Document = bytes.Clone(snapshot.Document)

	return snapshot, nil
}

// Reset drops the stored snapshot.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = nil
	return nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}
