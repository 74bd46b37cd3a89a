package btree

import (
	"fmt"

	virtualdisk "EmberDB/storage_engine/virtual_disk"
	"EmberDB/types"
)

// Open binds a B-tree to its root page. An all-zero root page (freshly
// allocated, never written) is materialized as an empty leaf.
func Open(disk *virtualdisk.VirtualDisk, root types.PageID) (*BTree, error) {
	if root == 0 {
		return nil, fmt.Errorf("btree: open: root page id 0 is the null sentinel")
	}
	t := &BTree{disk: disk, root: root}

	page, err := disk.ReadPage(root)
	if err != nil {
		return nil, fmt.Errorf("btree: open root %d: %w", root, err)
	}
	if isZeroHeader(page) {
		empty, err := buildLeaf(nil, 0)
		if err != nil {
			return nil, err
		}
		if err := disk.WritePage(root, empty); err != nil {
			return nil, fmt.Errorf("btree: init root %d: %w", root, err)
		}
	}
	return t, nil
}
