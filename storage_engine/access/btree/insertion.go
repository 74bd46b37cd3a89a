package btree

import (
	"fmt"

	"EmberDB/types"
)

// Insert stores payload under key. An existing key fails with
// ErrDuplicateKey; a leaf with no room splits.
func (t *BTree) Insert(key uint32, payload []byte) error {
	if headerSize+leafCellOverhead+len(payload) > types.PageSize {
		return fmt.Errorf("Insert: key %d: %w", key, ErrPayloadTooLarge)
	}

	leafID, page, path, err := t.findLeaf(key)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	cells, err := readLeafCells(page)
	if err != nil {
		return fmt.Errorf("Insert: leaf %d: %w", leafID, err)
	}

	idx := len(cells)
	for i, c := range cells {
		if c.key == key {
			return fmt.Errorf("Insert: key %d: %w", key, ErrDuplicateKey)
		}
		if c.key > key {
			idx = i
			break
		}
	}

	cell := leafCell{key: key, payload: append([]byte(nil), payload...)}

	if leafBytes(cells)+leafCellOverhead+len(payload) <= types.PageSize {
		merged := make([]leafCell, 0, len(cells)+1)
		merged = append(merged, cells[:idx]...)
		merged = append(merged, cell)
		merged = append(merged, cells[idx:]...)

		rewritten, err := buildLeaf(merged, parentPtr(page))
		if err != nil {
			return fmt.Errorf("Insert: leaf %d: %w", leafID, err)
		}
		if err := t.disk.WritePage(leafID, rewritten); err != nil {
			return fmt.Errorf("Insert: leaf %d: %w", leafID, err)
		}
		return nil
	}

	return t.splitLeaf(leafID, cells, cell, path)
}
