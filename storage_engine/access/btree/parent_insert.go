package btree

import (
	"fmt"
	"sort"

	"EmberDB/types"
)

// insertIntoInternal adds a (separator, right child) pair to an internal
// node and rewrites it in key order. A node that no longer fits fails with
// ErrIndexPageFull; internal nodes are never split.
func (t *BTree) insertIntoInternal(parentID types.PageID, key uint32, rightChild types.PageID) error {
	page, err := t.disk.ReadPage(parentID)
	if err != nil {
		return fmt.Errorf("insertIntoInternal: page %d: %w", parentID, err)
	}
	child0, entries, err := readInternal(page)
	if err != nil {
		return fmt.Errorf("insertIntoInternal: page %d: %w", parentID, err)
	}

	entries = append(entries, internalEntry{key: key, child: rightChild})
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	rewritten, err := buildInternal(child0, entries, parentPtr(page))
	if err != nil {
		return fmt.Errorf("insertIntoInternal: page %d: %w", parentID, err)
	}
	if err := t.disk.WritePage(parentID, rewritten); err != nil {
		return fmt.Errorf("insertIntoInternal: write %d: %w", parentID, err)
	}
	return nil
}
