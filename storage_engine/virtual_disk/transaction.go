package virtualdisk

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"EmberDB/internal/logging"
	"EmberDB/types"
)

// Begin opens the transaction sub-state. At most one transaction is active
// at a time.
func (vd *VirtualDisk) Begin() error {
	if vd.tx != nil {
		return ErrTransactionActive
	}
	vd.tx = &txState{
		id:    uuid.NewString(),
		pages: make(map[types.PageID][]byte),
		meta:  make(map[string]any),
	}
	logging.Info("transaction begin", "txn", vd.tx.id)
	return nil
}

// TxnID returns the active transaction's ID, or "" when none is active.
func (vd *VirtualDisk) TxnID() string {
	if vd.tx == nil {
		return ""
	}
	return vd.tx.id
}

// Commit writes every buffered page through to the device, then the buffered
// metadata entries, then the allocation counter, and destroys the buffers.
// Commit is atomic against Rollback, not against a crash mid-write.
func (vd *VirtualDisk) Commit() error {
	if vd.tx == nil {
		return ErrNoTransaction
	}
	tx := vd.tx
	vd.tx = nil // buffered writes now take the write-through path

	ids := make([]types.PageID, 0, len(tx.pages))
	for id := range tx.pages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := vd.writeThrough(id, tx.pages[id]); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}

	keys := make([]string, 0, len(tx.meta))
	for key := range tx.meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := vd.device.SetMeta(key, tx.meta[key]); err != nil {
			return fmt.Errorf("commit: meta %q: %w", key, err)
		}
	}

	if err := vd.persistMaxPageID(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logging.Info("transaction commit", "txn", tx.id, "pages", len(tx.pages), "meta", len(tx.meta))
	return nil
}

// Rollback discards both buffers, drops the page cache, and reloads the
// allocation counter from the device, undoing transactional allocations.
func (vd *VirtualDisk) Rollback() error {
	if vd.tx == nil {
		return ErrNoTransaction
	}
	id := vd.tx.id
	vd.tx = nil
	if err := vd.Refresh(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	logging.Info("transaction rollback", "txn", id)
	return nil
}
