package btree

import (
	"fmt"
	"sort"

	"EmberDB/types"
)

// splitLeaf distributes the leaf's cells plus the incoming one across the
// original page and a freshly allocated right sibling, then promotes the
// right half's first key as the separator. The parent is taken from the
// descent path, never from the page's parent_ptr field.
func (t *BTree) splitLeaf(leafID types.PageID, cells []leafCell, incoming leafCell, path []types.PageID) error {
	all := make([]leafCell, 0, len(cells)+1)
	all = append(all, cells...)
	all = append(all, incoming)
	sort.Slice(all, func(i, j int) bool { return all[i].key < all[j].key })

	mid := len(all) / 2
	left := all[:mid]
	right := all[mid:]
	separator := all[mid].key

	rightID, err := t.disk.AllocatePage()
	if err != nil {
		return fmt.Errorf("splitLeaf: allocate right sibling: %w", err)
	}

	leftPage, err := buildLeaf(left, 0)
	if err != nil {
		return fmt.Errorf("splitLeaf: left half: %w", err)
	}
	rightPage, err := buildLeaf(right, 0)
	if err != nil {
		return fmt.Errorf("splitLeaf: right half: %w", err)
	}

	if err := t.disk.WritePage(leafID, leftPage); err != nil {
		return fmt.Errorf("splitLeaf: write left %d: %w", leafID, err)
	}
	if err := t.disk.WritePage(rightID, rightPage); err != nil {
		return fmt.Errorf("splitLeaf: write right %d: %w", rightID, err)
	}

	if leafID == t.root {
		return t.createNewRoot(leafID, separator, rightID)
	}
	parentID := path[len(path)-1]
	return t.insertIntoInternal(parentID, separator, rightID)
}

// createNewRoot allocates a new root whose two children are the split halves
// and records the new root under the `root` metadata key.
func (t *BTree) createNewRoot(leftID types.PageID, separator uint32, rightID types.PageID) error {
	rootID, err := t.disk.AllocatePage()
	if err != nil {
		return fmt.Errorf("createNewRoot: allocate: %w", err)
	}
	page, err := buildInternal(leftID, []internalEntry{{key: separator, child: rightID}}, 0)
	if err != nil {
		return fmt.Errorf("createNewRoot: %w", err)
	}
	if err := t.disk.WritePage(rootID, page); err != nil {
		return fmt.Errorf("createNewRoot: write %d: %w", rootID, err)
	}
	t.root = rootID
	if err := t.disk.SetMeta(rootMetaKey, uint32(rootID)); err != nil {
		return fmt.Errorf("createNewRoot: persist root: %w", err)
	}
	return nil
}
