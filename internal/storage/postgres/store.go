// Package postgres persists ledger snapshots to a single-row jsonb document.
// The snapshot contract is whole-state write-through, so a keyed upsert keeps
// the store as simple as the flat file while giving the durability of a
// database.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/banksim/ledger-engine/internal/interfaces"
	"github.com/banksim/ledger-engine/internal/storage"
)

type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// EnsureSchema creates the snapshot table when it does not exist.
func (p *SnapshotStore) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS ledger_snapshots (
		id       INT PRIMARY KEY CHECK (id = 1),
		data     JSONB NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

	_, err := p.db.ExecContext(ctx, query)
	return err
}

func (p *SnapshotStore) Load(ctx context.Context) (storage.Snapshot, error) {
	const query = `SELECT data FROM ledger_snapshots WHERE id = 1`

	var data []byte
	err := p.db.QueryRowContext(ctx, query).Scan(&data)
	if err == sql.ErrNoRows {
		return storage.Snapshot{}, nil
	}
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var snap storage.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return storage.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (p *SnapshotStore) Save(ctx context.Context, snap storage.Snapshot) error {
	const query = `INSERT INTO ledger_snapshots (id, data, saved_at)
	VALUES (1, $1, now())
	ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, saved_at = now()`

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, query, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)
