package storageengine

import (
	"fmt"

	"EmberDB/types"
)

func (se *StorageEngine) execSelect(cmd types.SelectCommand) (Result, error) {
	table, err := se.table(cmd.Table)
	if err != nil {
		return Result{}, err
	}

	rows, err := se.scanTable(table)
	if err != nil {
		return Result{}, err
	}
	columns := columnNames(&table.Schema)

	if cmd.Join != nil {
		right, err := se.table(cmd.Join.Table)
		if err != nil {
			return Result{}, err
		}
		rightRows, err := se.scanTable(right)
		if err != nil {
			return Result{}, err
		}
		rows = nestedLoopJoin(rows, rightRows, cmd.Table, cmd.Join.Table, cmd.Join.On)
		columns = mergeColumns(columns, &right.Schema, cmd.Join.Table)
	}

	if len(cmd.Where) > 0 {
		filtered := rows[:0:0]
		for _, row := range rows {
			if rowMatches(row, cmd.Table, cmd.Where) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	return Result{
		Status:  fmt.Sprintf("%d row(s)", len(rows)),
		Columns: columns,
		Rows:    rows,
	}, nil
}

// scanTable decodes every row of the table in primary-key order.
func (se *StorageEngine) scanTable(table *Table) ([]types.Row, error) {
	entries, err := table.Tree.GetAll()
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", table.Schema.Name, err)
	}
	rows := make([]types.Row, 0, len(entries))
	for _, e := range entries {
		row, err := DecodeRow(e.Payload, table.Schema.Columns)
		if err != nil {
			return nil, fmt.Errorf("table %q: key %d: %w", table.Schema.Name, e.Key, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnNames(schema *types.TableSchema) []string {
	out := make([]string, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		out = append(out, col.Name)
	}
	return out
}

// mergeColumns appends the joined table's columns to the base list, renaming
// conflicts the same way merged rows do.
func mergeColumns(base []string, right *types.TableSchema, rightTable string) []string {
	present := make(map[string]bool, len(base))
	for _, name := range base {
		present[name] = true
	}
	out := base
	for _, col := range right.Columns {
		if present[col.Name] {
			out = append(out, rightTable+"."+col.Name)
		} else {
			out = append(out, col.Name)
		}
	}
	return out
}
