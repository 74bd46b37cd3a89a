package storageengine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"EmberDB/internal/logging"
	btree "EmberDB/storage_engine/access/btree"
	virtualdisk "EmberDB/storage_engine/virtual_disk"
	"EmberDB/types"
)

/*
The main file of the storage engine: construction, catalog load/persist, and
command dispatch. The catalog is one metadata blob under `tables`, rewritten
whenever a table is created or a table's root page or auto-increment counter
moves, with a blake3 digest alongside it under `tables_sum`.
*/

func NewStorageEngine(disk *virtualdisk.VirtualDisk) (*StorageEngine, error) {
	se := &StorageEngine{disk: disk}
	if err := se.loadCatalog(); err != nil {
		return nil, fmt.Errorf("storage engine: %w", err)
	}
	return se, nil
}

// Execute runs one validated command and returns its result.
func (se *StorageEngine) Execute(cmd types.Command) (Result, error) {
	switch c := cmd.(type) {
	case types.CreateTableCommand:
		return se.execCreateTable(c)
	case types.InsertCommand:
		return se.execInsert(c)
	case types.SelectCommand:
		return se.execSelect(c)
	case types.UpdateCommand:
		return se.execUpdate(c)
	case types.DeleteCommand:
		return se.execDelete(c)
	case types.BeginCommand:
		return se.execBegin()
	case types.CommitCommand:
		return se.execCommit()
	case types.RollbackCommand:
		return se.execRollback()
	default:
		return Result{}, fmt.Errorf("unsupported command %T", cmd)
	}
}

// Refresh drops every in-memory table handle and reloads the catalog from
// the virtual disk. Rollback relies on it: the discarded metadata buffer may
// have held a newer catalog.
func (se *StorageEngine) Refresh() error {
	return se.loadCatalog()
}

func (se *StorageEngine) table(name string) (*Table, error) {
	t, ok := se.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, ErrTableNotFound)
	}
	return t, nil
}

func (se *StorageEngine) loadCatalog() error {
	se.tables = make(map[string]*Table)
	se.order = nil

	raw, ok, err := se.disk.GetMeta(tablesMetaKey)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if !ok {
		return nil
	}

	se.verifyCatalogSum(raw)

	// Remarshal the structured metadata value into typed records.
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	var schemas []types.TableSchema
	if err := json.Unmarshal(data, &schemas); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	for _, schema := range schemas {
		if len(schema.Columns) == 0 {
			logging.Warn("skipping corrupted catalog entry without columns", "table", schema.Name)
			continue
		}
		tree, err := btree.Open(se.disk, schema.RootPageID)
		if err != nil {
			return fmt.Errorf("load catalog: table %q: %w", schema.Name, err)
		}
		se.tables[schema.Name] = &Table{Schema: schema, Tree: tree}
		se.order = append(se.order, schema.Name)
	}
	return nil
}

func (se *StorageEngine) persistCatalog() error {
	schemas := make([]types.TableSchema, 0, len(se.order))
	for _, name := range se.order {
		schemas = append(schemas, se.tables[name].Schema)
	}
	if err := se.disk.SetMeta(tablesMetaKey, schemas); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	sum, err := catalogSum(schemas)
	if err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	if err := se.disk.SetMeta(tablesSumMetaKey, sum); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	return nil
}

// verifyCatalogSum checks the stored blake3 digest against the loaded blob.
// A mismatch is an advisory, never fatal: the catalog entries themselves are
// still validated one by one.
func (se *StorageEngine) verifyCatalogSum(raw any) {
	stored, ok, err := se.disk.GetMeta(tablesSumMetaKey)
	if err != nil || !ok {
		return
	}
	want, ok := stored.(string)
	if !ok {
		return
	}
	got, err := catalogSum(raw)
	if err != nil {
		return
	}
	if got != want {
		logging.Warn("catalog checksum mismatch", "want", want, "got", got)
	}
}

// catalogSum hashes the catalog's canonical JSON form. Canonicalizing through
// an untyped decode makes typed and device-loaded values hash identically.
func catalogSum(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var untyped any
	if err := json.Unmarshal(data, &untyped); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(untyped)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// syncRoot folds a possibly changed B-tree root back into the schema,
// reporting whether the catalog needs a rewrite.
func (t *Table) syncRoot() bool {
	if t.Tree.Root() != t.Schema.RootPageID {
		t.Schema.RootPageID = t.Tree.Root()
		return true
	}
	return false
}
