package storageengine

import (
	"fmt"

	"EmberDB/internal/logging"
	btree "EmberDB/storage_engine/access/btree"
	"EmberDB/types"
)

func (se *StorageEngine) execCreateTable(cmd types.CreateTableCommand) (Result, error) {
	if _, exists := se.tables[cmd.Name]; exists {
		return Result{}, fmt.Errorf("table %q: %w", cmd.Name, ErrTableExists)
	}

	var pkColumn string
	seen := make(map[string]bool, len(cmd.Columns))
	for _, col := range cmd.Columns {
		if seen[col.Name] {
			return Result{}, fmt.Errorf("table %q: duplicate column %q", cmd.Name, col.Name)
		}
		seen[col.Name] = true
		if col.Type != types.TypeInteger && col.Type != types.TypeText {
			return Result{}, fmt.Errorf("table %q: column %q: unsupported type %q", cmd.Name, col.Name, col.Type)
		}
		if col.IsPrimaryKey {
			if pkColumn != "" {
				return Result{}, fmt.Errorf("table %q: more than one primary key column", cmd.Name)
			}
			if col.Type != types.TypeInteger {
				return Result{}, fmt.Errorf("table %q: column %q: %w", cmd.Name, col.Name, ErrPrimaryKeyNotInt)
			}
			pkColumn = col.Name
		}
	}
	if pkColumn == "" {
		return Result{}, fmt.Errorf("table %q: %w", cmd.Name, ErrNoPrimaryKey)
	}

	rootID, err := se.disk.AllocatePage()
	if err != nil {
		return Result{}, fmt.Errorf("create table %q: %w", cmd.Name, err)
	}
	tree, err := btree.Open(se.disk, rootID)
	if err != nil {
		return Result{}, fmt.Errorf("create table %q: %w", cmd.Name, err)
	}

	se.tables[cmd.Name] = &Table{
		Schema: types.TableSchema{
			Name:       cmd.Name,
			Columns:    cmd.Columns,
			PKColumn:   pkColumn,
			RootPageID: rootID,
			Seq:        0,
		},
		Tree: tree,
	}
	se.order = append(se.order, cmd.Name)

	if err := se.persistCatalog(); err != nil {
		return Result{}, err
	}

	logging.Debug("table created", "table", cmd.Name, "root", rootID)
	return Result{Status: fmt.Sprintf("Table %s created", cmd.Name)}, nil
}
