package storageengine

import (
	"fmt"

	"EmberDB/types"
)

func (se *StorageEngine) execDelete(cmd types.DeleteCommand) (Result, error) {
	table, err := se.table(cmd.Table)
	if err != nil {
		return Result{}, err
	}
	schema := &table.Schema

	matches, err := se.matchingRows(table, cmd.Table, cmd.Where)
	if err != nil {
		return Result{}, err
	}

	deleted := 0
	for _, match := range matches {
		pkVal, ok := match.Get(schema.PKColumn)
		if !ok || pkVal.Kind != types.KindInteger {
			return Result{}, fmt.Errorf("table %q: row without integer primary key", schema.Name)
		}
		if err := table.Tree.Delete(uint32(pkVal.Int)); err != nil {
			return Result{}, err
		}
		deleted++
	}

	return Result{Status: fmt.Sprintf("%d row(s) deleted", deleted)}, nil
}
