package storageengine

import (
	"fmt"

	"EmberDB/types"
)

func (se *StorageEngine) execInsert(cmd types.InsertCommand) (Result, error) {
	table, err := se.table(cmd.Table)
	if err != nil {
		return Result{}, err
	}
	schema := &table.Schema

	row, err := buildInsertRow(schema, cmd)
	if err != nil {
		return Result{}, err
	}

	pk, err := se.resolvePrimaryKey(table, row)
	if err != nil {
		return Result{}, err
	}
	row.Set(schema.PKColumn, types.NewInt(pk))

	encoded, err := EncodeRow(schema.Columns, row)
	if err != nil {
		return Result{}, err
	}
	if err := table.Tree.Insert(uint32(pk), encoded); err != nil {
		return Result{}, err
	}

	if uint32(pk) > schema.Seq {
		schema.Seq = uint32(pk)
	}
	table.syncRoot()
	if err := se.persistCatalog(); err != nil {
		return Result{}, err
	}

	return Result{Status: "1 row inserted"}, nil
}

// buildInsertRow maps the command's values onto columns: positionally when no
// column list is given, by name otherwise. The named form must name each
// target column exactly once.
func buildInsertRow(schema *types.TableSchema, cmd types.InsertCommand) (types.Row, error) {
	row := types.NewRow()

	if len(cmd.Columns) == 0 {
		if len(cmd.Values) != len(schema.Columns) {
			return types.Row{}, fmt.Errorf("table %q: got %d values for %d columns: %w",
				schema.Name, len(cmd.Values), len(schema.Columns), ErrColumnCountMismatch)
		}
		for i, col := range schema.Columns {
			row.Set(col.Name, cmd.Values[i])
		}
		return row, nil
	}

	if len(cmd.Columns) != len(cmd.Values) {
		return types.Row{}, fmt.Errorf("table %q: got %d values for %d named columns: %w",
			schema.Name, len(cmd.Values), len(cmd.Columns), ErrColumnCountMismatch)
	}
	seen := make(map[string]bool, len(cmd.Columns))
	for i, name := range cmd.Columns {
		if _, ok := schema.Column(name); !ok {
			return types.Row{}, fmt.Errorf("table %q: column %q: %w", schema.Name, name, ErrColumnNotFound)
		}
		if seen[name] {
			return types.Row{}, fmt.Errorf("table %q: column %q named twice: %w", schema.Name, name, ErrColumnCountMismatch)
		}
		seen[name] = true
		row.Set(name, cmd.Values[i])
	}
	return row, nil
}

// resolvePrimaryKey picks the row's key: an absent or NULL primary key takes
// the next auto-increment value, strictly greater than both the table's
// counter and every key currently in the tree.
func (se *StorageEngine) resolvePrimaryKey(table *Table, row types.Row) (int32, error) {
	schema := &table.Schema

	v, ok := row.Get(schema.PKColumn)
	if !ok || v.IsNull() {
		maxKey, err := table.Tree.GetMaxKey()
		if err != nil {
			return 0, fmt.Errorf("table %q: %w", schema.Name, err)
		}
		next := maxKey
		if schema.Seq > next {
			next = schema.Seq
		}
		return int32(next + 1), nil
	}

	if v.Kind != types.KindInteger {
		return 0, fmt.Errorf("table %q: primary key %q: %w", schema.Name, v.String(), ErrInvalidPKValue)
	}
	return v.Int, nil
}
