package storageengine

import (
	"errors"

	btree "EmberDB/storage_engine/access/btree"
	virtualdisk "EmberDB/storage_engine/virtual_disk"
	"EmberDB/types"
)

var (
	ErrTableExists         = errors.New("table already exists")
	ErrTableNotFound       = errors.New("table not found")
	ErrNoPrimaryKey        = errors.New("no primary key column")
	ErrPrimaryKeyNotInt    = errors.New("primary key column must be INTEGER")
	ErrColumnNotFound      = errors.New("column not found")
	ErrColumnCountMismatch = errors.New("column count mismatch")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrCannotUpdatePK      = errors.New("cannot update primary key")
	ErrNullValue           = errors.New("column value must not be null")
	ErrInvalidPKValue      = errors.New("invalid primary key value")
)

// Metadata keys for the persisted catalog and its integrity digest.
const (
	tablesMetaKey    = "tables"
	tablesSumMetaKey = "tables_sum"
)

// StorageEngine binds the catalog to its virtual disk: every known table with
// its schema, B-tree handle, and auto-increment counter.
type StorageEngine struct {
	disk   *virtualdisk.VirtualDisk
	tables map[string]*Table
	order  []string // catalog order, preserved across persist/reload
}

type Table struct {
	Schema types.TableSchema
	Tree   *btree.BTree
}

// Result is what a command evaluates to: a status line for mutations and
// transaction control, ordered rows plus their column order for SELECT.
type Result struct {
	Status  string
	Columns []string
	Rows    []types.Row
}
