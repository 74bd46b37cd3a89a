package btree

import "fmt"

// Delete removes the cell stored under key by rewriting its leaf without it.
// No rebalancing, no underflow handling, no page reclamation.
func (t *BTree) Delete(key uint32) error {
	leafID, page, _, err := t.findLeaf(key)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	cells, err := readLeafCells(page)
	if err != nil {
		return fmt.Errorf("Delete: leaf %d: %w", leafID, err)
	}

	kept := make([]leafCell, 0, len(cells))
	found := false
	for _, c := range cells {
		if c.key == key {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return fmt.Errorf("Delete: key %d: %w", key, ErrKeyNotFound)
	}

	rewritten, err := buildLeaf(kept, parentPtr(page))
	if err != nil {
		return fmt.Errorf("Delete: leaf %d: %w", leafID, err)
	}
	if err := t.disk.WritePage(leafID, rewritten); err != nil {
		return fmt.Errorf("Delete: leaf %d: %w", leafID, err)
	}
	return nil
}
