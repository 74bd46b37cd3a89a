// Structure of the on-page B-tree
/*
Tree
 ├── Internal node: child_0 | key_1 | child_1 | ... | key_n | child_n
 │      └── Child internal nodes ...
 │             └── Leaf nodes (key | payload_size | payload cells)

- every node is one 4096-byte page with a 7-byte header
- all multi-byte integers are big-endian
- leaf keys strictly increasing and unique
- subtree under child_i holds keys in [key_i, key_{i+1})
*/
package btree

import (
	"errors"

	virtualdisk "EmberDB/storage_engine/virtual_disk"
	"EmberDB/types"
)

const (
	nodeInternal byte = 0
	nodeLeaf     byte = 1

	// Page header: node_type(1) | num_cells(2) | parent_ptr(4)
	headerSize  = 7
	offNodeType = 0
	offNumCells = 1
	offParent   = 3

	// Leaf cell: key(4) | payload_size(4) | payload
	leafCellOverhead = 8

	// Internal entry: key(4) | child(4), after the leading child_0(4)
	internalEntrySize = 8

	// Metadata key recording the root page after a root split.
	rootMetaKey = "root"
)

var (
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrKeyNotFound     = errors.New("key not found")
	ErrIndexPageFull   = errors.New("index page full")
	ErrPayloadTooLarge = errors.New("payload too large for a page")
)

// BTree is an ordered map uint32 -> []byte persisted across virtual-disk
// pages. Its only mutable state is the current root page ID, which changes
// on a root split.
type BTree struct {
	disk *virtualdisk.VirtualDisk
	root types.PageID
}

// Entry is one key/payload pair yielded by GetAll.
type Entry struct {
	Key     uint32
	Payload []byte
}

type leafCell struct {
	key     uint32
	payload []byte
}

type internalEntry struct {
	key   uint32
	child types.PageID
}

// Root returns the current root page ID.
func (t *BTree) Root() types.PageID {
	return t.root
}
