package storageengine

import (
	"fmt"

	"EmberDB/types"
)

func (se *StorageEngine) execUpdate(cmd types.UpdateCommand) (Result, error) {
	table, err := se.table(cmd.Table)
	if err != nil {
		return Result{}, err
	}
	schema := &table.Schema

	matches, err := se.matchingRows(table, cmd.Table, cmd.Where)
	if err != nil {
		return Result{}, err
	}

	updated := 0
	for _, match := range matches {
		pkVal, ok := match.Get(schema.PKColumn)
		if !ok || pkVal.Kind != types.KindInteger {
			return Result{}, fmt.Errorf("table %q: row without integer primary key", schema.Name)
		}
		pk := uint32(pkVal.Int)

		// Re-read the row by primary key; the match came from a full scan.
		payload, found, err := table.Tree.Search(pk)
		if err != nil {
			return Result{}, err
		}
		if !found {
			continue
		}
		row, err := DecodeRow(payload, schema.Columns)
		if err != nil {
			return Result{}, fmt.Errorf("table %q: key %d: %w", schema.Name, pk, err)
		}

		for _, assign := range cmd.Assignments {
			col, ok := schema.Column(assign.Column)
			if !ok {
				return Result{}, fmt.Errorf("table %q: column %q: %w", schema.Name, assign.Column, ErrColumnNotFound)
			}
			if col.Name == schema.PKColumn && !types.EqualValues(assign.Value, pkVal) {
				return Result{}, fmt.Errorf("table %q: %w", schema.Name, ErrCannotUpdatePK)
			}
			if err := validateColumnValue(col, assign.Value); err != nil {
				return Result{}, fmt.Errorf("table %q: %w", schema.Name, err)
			}
			row.Set(col.Name, assign.Value)
		}

		encoded, err := EncodeRow(schema.Columns, row)
		if err != nil {
			return Result{}, err
		}
		if err := table.Tree.Delete(pk); err != nil {
			return Result{}, err
		}
		if err := table.Tree.Insert(pk, encoded); err != nil {
			return Result{}, err
		}
		updated++
	}

	if table.syncRoot() {
		if err := se.persistCatalog(); err != nil {
			return Result{}, err
		}
	}
	return Result{Status: fmt.Sprintf("%d row(s) updated", updated)}, nil
}

func validateColumnValue(col types.ColumnDef, v types.Value) error {
	if v.IsNull() {
		return fmt.Errorf("column %s: %w", col.Name, ErrNullValue)
	}
	switch col.Type {
	case types.TypeInteger:
		if v.Kind != types.KindInteger {
			return fmt.Errorf("column %s: expected INTEGER, got %q: %w", col.Name, v.String(), ErrTypeMismatch)
		}
	case types.TypeText:
		if v.Kind != types.KindText {
			return fmt.Errorf("column %s: expected TEXT, got %q: %w", col.Name, v.String(), ErrTypeMismatch)
		}
	}
	return nil
}

// matchingRows scans the table and keeps the rows satisfying the AND-ed
// conditions, in primary-key order.
func (se *StorageEngine) matchingRows(table *Table, tableName string, where []types.Condition) ([]types.Row, error) {
	rows, err := se.scanTable(table)
	if err != nil {
		return nil, err
	}
	if len(where) == 0 {
		return rows, nil
	}
	kept := rows[:0:0]
	for _, row := range rows {
		if rowMatches(row, tableName, where) {
			kept = append(kept, row)
		}
	}
	return kept, nil
}
