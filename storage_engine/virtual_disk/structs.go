package virtualdisk

import (
	"errors"

	"github.com/dgraph-io/ristretto/v2"

	blockdevice "EmberDB/storage_engine/block_device"
	"EmberDB/types"
)

/*
The virtual disk sits between the B-tree and the block device. It owns:

  - a cost-based cache of clean, device-backed pages,
  - the persisted page-allocation counter (`max_page_id`),
  - at most one transaction sub-state buffering page and metadata writes.

Writes outside a transaction go through to the device immediately. Writes
inside a transaction land in the buffers and become visible together on
Commit, or vanish on Rollback. Reads always see pending transactional writes
first.
*/

var (
	ErrTransactionActive = errors.New("transaction already active")
	ErrNoTransaction     = errors.New("no active transaction")
)

// Metadata key for the persisted allocation counter.
const maxPageIDKey = "max_page_id"

type VirtualDisk struct {
	device    blockdevice.BlockDevice
	cache     *ristretto.Cache[uint32, []byte]
	maxPageID types.PageID
	tx        *txState
}

// txState buffers all writes of the active transaction. It is created by
// Begin and destroyed by Commit or Rollback.
type txState struct {
	id    string
	pages map[types.PageID][]byte
	meta  map[string]any
}
