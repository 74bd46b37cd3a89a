package btree

import (
	"fmt"

	"EmberDB/types"
)

// GetAll yields every entry in ascending key order via an in-order walk.
func (t *BTree) GetAll() ([]Entry, error) {
	var out []Entry
	if err := t.walk(t.root, &out); err != nil {
		return nil, fmt.Errorf("GetAll: %w", err)
	}
	return out, nil
}

func (t *BTree) walk(id types.PageID, out *[]Entry) error {
	page, err := t.disk.ReadPage(id)
	if err != nil {
		return fmt.Errorf("page %d: %w", id, err)
	}
	if nodeType(page) == nodeLeaf {
		cells, err := readLeafCells(page)
		if err != nil {
			return fmt.Errorf("page %d: %w", id, err)
		}
		for _, c := range cells {
			*out = append(*out, Entry{Key: c.key, Payload: c.payload})
		}
		return nil
	}

	child0, entries, err := readInternal(page)
	if err != nil {
		return fmt.Errorf("page %d: %w", id, err)
	}
	if err := t.walk(child0, out); err != nil {
		return err
	}
	for _, e := range entries {
		if err := t.walk(e.child, out); err != nil {
			return err
		}
	}
	return nil
}

// GetMaxKey walks to the right-most leaf and returns its last key, or 0 for
// an empty tree.
func (t *BTree) GetMaxKey() (uint32, error) {
	current := t.root
	for {
		page, err := t.disk.ReadPage(current)
		if err != nil {
			return 0, fmt.Errorf("GetMaxKey: page %d: %w", current, err)
		}
		if nodeType(page) == nodeLeaf {
			cells, err := readLeafCells(page)
			if err != nil {
				return 0, fmt.Errorf("GetMaxKey: page %d: %w", current, err)
			}
			if len(cells) == 0 {
				return 0, nil
			}
			return cells[len(cells)-1].key, nil
		}
		child0, entries, err := readInternal(page)
		if err != nil {
			return 0, fmt.Errorf("GetMaxKey: page %d: %w", current, err)
		}
		if len(entries) == 0 {
			current = child0
			continue
		}
		current = entries[len(entries)-1].child
	}
}
