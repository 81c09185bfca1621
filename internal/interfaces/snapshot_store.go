package interfaces

import (
	"context"

	"github.com/banksim/ledger-engine/internal/storage"
)

// SnapshotStore is the persistence collaborator. The ledger is write-through:
// it calls Save after every successful mutation and Load once at startup.
type SnapshotStore interface {
	Load(ctx context.Context) (storage.Snapshot, error)
	Save(ctx context.Context, snap storage.Snapshot) error
}
