// Package memory provides an in-memory SnapshotStore. It is the default in
// tests: besides holding the last saved snapshot it counts saves, so tests
// can assert the write-through happened.
package memory

import (
	"context"
	"sync"

	"github.com/banksim/ledger-engine/internal/interfaces"
	"github.com/banksim/ledger-engine/internal/storage"
)

type SnapshotStore struct {
	mu    sync.Mutex
	last  storage.Snapshot
	saves int
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (m *SnapshotStore) Load(ctx context.Context) (storage.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, nil
}

func (m *SnapshotStore) Save(ctx context.Context, snap storage.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = snap
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *SnapshotStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Last returns the most recently saved snapshot.
func (m *SnapshotStore) Last() storage.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)
