package btree

import "fmt"

// Search returns the payload stored under key, with ok=false when the key is
// absent.
func (t *BTree) Search(key uint32) ([]byte, bool, error) {
	_, page, _, err := t.findLeaf(key)
	if err != nil {
		return nil, false, fmt.Errorf("Search: %w", err)
	}
	cells, err := readLeafCells(page)
	if err != nil {
		return nil, false, fmt.Errorf("Search: %w", err)
	}
	for _, c := range cells {
		if c.key == key {
			return c.payload, true, nil
		}
	}
	return nil, false, nil
}
