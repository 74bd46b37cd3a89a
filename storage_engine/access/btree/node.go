package btree

import (
	"encoding/binary"
	"fmt"

	"EmberDB/types"
)

// Big-endian accessors over a borrowed page slice. Every per-cell offset
// advance below is an explicit read; there is no hidden iteration state.

func nodeType(page []byte) byte {
	return page[offNodeType]
}

func numCells(page []byte) int {
	return int(binary.BigEndian.Uint16(page[offNumCells:]))
}

func parentPtr(page []byte) types.PageID {
	return types.PageID(binary.BigEndian.Uint32(page[offParent:]))
}

func putHeader(page []byte, typ byte, cells int, parent types.PageID) {
	page[offNodeType] = typ
	binary.BigEndian.PutUint16(page[offNumCells:], uint16(cells))
	binary.BigEndian.PutUint32(page[offParent:], uint32(parent))
}

// isZeroHeader reports whether the page was never initialized. A fresh page
// is all zeroes; the tree treats it as an empty leaf with no parent.
func isZeroHeader(page []byte) bool {
	for _, b := range page[:headerSize] {
		if b != 0 {
			return false
		}
	}
	return true
}

// readLeafCells decodes all cells of a leaf page in stored (ascending key)
// order. Payload slices are copies, detached from the page buffer.
func readLeafCells(page []byte) ([]leafCell, error) {
	n := numCells(page)
	cells := make([]leafCell, 0, n)
	offset := headerSize
	for i := 0; i < n; i++ {
		if offset+leafCellOverhead > types.PageSize {
			return nil, fmt.Errorf("leaf cell %d: header past page end", i)
		}
		key := binary.BigEndian.Uint32(page[offset:])
		offset += 4
		size := int(binary.BigEndian.Uint32(page[offset:]))
		offset += 4
		if offset+size > types.PageSize {
			return nil, fmt.Errorf("leaf cell %d: payload of %d bytes past page end", i, size)
		}
		payload := append([]byte(nil), page[offset:offset+size]...)
		offset += size
		cells = append(cells, leafCell{key: key, payload: payload})
	}
	return cells, nil
}

func leafBytes(cells []leafCell) int {
	size := headerSize
	for _, c := range cells {
		size += leafCellOverhead + len(c.payload)
	}
	return size
}

// buildLeaf lays the cells out on a fresh page. Insert checks capacity with
// leafBytes before calling it; splitLeaf does not, so a split half that still
// exceeds the page (possible when payload sizes are uneven) is returned as
// this error.
func buildLeaf(cells []leafCell, parent types.PageID) ([]byte, error) {
	if leafBytes(cells) > types.PageSize {
		return nil, fmt.Errorf("leaf of %d cells exceeds page size", len(cells))
	}
	page := make([]byte, types.PageSize)
	putHeader(page, nodeLeaf, len(cells), parent)
	offset := headerSize
	for _, c := range cells {
		binary.BigEndian.PutUint32(page[offset:], c.key)
		offset += 4
		binary.BigEndian.PutUint32(page[offset:], uint32(len(c.payload)))
		offset += 4
		copy(page[offset:], c.payload)
		offset += len(c.payload)
	}
	return page, nil
}

// readInternal decodes an internal node: n+1 children interleaved with n
// separator keys.
func readInternal(page []byte) (child0 types.PageID, entries []internalEntry, err error) {
	n := numCells(page)
	if headerSize+4+n*internalEntrySize > types.PageSize {
		return 0, nil, fmt.Errorf("internal node with %d cells past page end", n)
	}
	offset := headerSize
	child0 = types.PageID(binary.BigEndian.Uint32(page[offset:]))
	offset += 4
	entries = make([]internalEntry, 0, n)
	for i := 0; i < n; i++ {
		key := binary.BigEndian.Uint32(page[offset:])
		offset += 4
		child := types.PageID(binary.BigEndian.Uint32(page[offset:]))
		offset += 4
		entries = append(entries, internalEntry{key: key, child: child})
	}
	return child0, entries, nil
}

// buildInternal lays out an internal node. ErrIndexPageFull signals that the
// separators no longer fit; internal splits are not performed.
func buildInternal(child0 types.PageID, entries []internalEntry, parent types.PageID) ([]byte, error) {
	if headerSize+4+len(entries)*internalEntrySize > types.PageSize {
		return nil, ErrIndexPageFull
	}
	page := make([]byte, types.PageSize)
	putHeader(page, nodeInternal, len(entries), parent)
	offset := headerSize
	binary.BigEndian.PutUint32(page[offset:], uint32(child0))
	offset += 4
	for _, e := range entries {
		binary.BigEndian.PutUint32(page[offset:], e.key)
		offset += 4
		binary.BigEndian.PutUint32(page[offset:], uint32(e.child))
		offset += 4
	}
	return page, nil
}
