package blockdevice

import (
	"EmberDB/types"
)

/*
The block device is the lowest layer: raw, byte-addressable persistence of
fixed-size pages keyed by page ID, plus a small string-keyed metadata store
used for the catalog and the persistent page-allocation counter.

It is synchronous and non-transactional. The only ordering guarantee is that
a successful write is visible to all subsequent reads of the same ID. The
virtual disk layers caching and transactions on top.
*/

// BlockDevice is the persistence contract. Metadata values are structured
// (strings, numbers, arrays, maps) and must round-trip exactly; both backends
// pass them through JSON encoding.
type BlockDevice interface {
	// ReadPage returns the page's current bytes, or a zero-filled page if the
	// ID has never been written. The returned slice is always a fresh copy of
	// length types.PageSize.
	ReadPage(id types.PageID) ([]byte, error)

	// WritePage durably records the page. data must be exactly types.PageSize
	// bytes.
	WritePage(id types.PageID, data []byte) error

	// GetMeta returns the value stored under key, with ok=false when the key
	// has never been set.
	GetMeta(key string) (any, bool, error)

	// SetMeta stores value under key.
	SetMeta(key string, value any) error

	// Reset erases all pages and metadata.
	Reset() error

	// Close releases backend resources.
	Close() error
}
