package btree

import (
	"fmt"

	"EmberDB/types"
)

// findLeaf walks from the root to the leaf responsible for key, returning
// the leaf's page ID and bytes plus the internal ancestors in root-first
// order. The routing rule descends into the child preceding the first
// separator that is strictly greater than key, and into the last child when
// no separator is greater.
func (t *BTree) findLeaf(key uint32) (types.PageID, []byte, []types.PageID, error) {
	var path []types.PageID
	current := t.root
	for {
		page, err := t.disk.ReadPage(current)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("findLeaf: page %d: %w", current, err)
		}
		if nodeType(page) == nodeLeaf {
			return current, page, path, nil
		}

		child0, entries, err := readInternal(page)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("findLeaf: page %d: %w", current, err)
		}
		path = append(path, current)

		next := child0
		descended := false
		for i, e := range entries {
			if key < e.key {
				if i > 0 {
					next = entries[i-1].child
				}
				descended = true
				break
			}
		}
		if !descended && len(entries) > 0 {
			next = entries[len(entries)-1].child
		}
		if next == 0 {
			return 0, nil, nil, fmt.Errorf("findLeaf: page %d routes to null child", current)
		}
		current = next
	}
}
