package storageengine

import (
	"errors"
	"strconv"
	"testing"

	"EmberDB/query_parser/parser"
	blockdevice "EmberDB/storage_engine/block_device"
	virtualdisk "EmberDB/storage_engine/virtual_disk"
	"EmberDB/types"
)

func newTestEngine(t *testing.T) (*StorageEngine, blockdevice.BlockDevice) {
	t.Helper()
	device := blockdevice.NewMemoryDevice()
	engine := reopenEngine(t, device)
	return engine, device
}

// reopenEngine builds a fresh virtual disk and engine over the device, the
// same path a process restart takes.
func reopenEngine(t *testing.T, device blockdevice.BlockDevice) *StorageEngine {
	t.Helper()
	disk, err := virtualdisk.New(device)
	if err != nil {
		t.Fatalf("virtual disk: %v", err)
	}
	engine, err := NewStorageEngine(disk)
	if err != nil {
		t.Fatalf("storage engine: %v", err)
	}
	return engine
}

func mustExec(t *testing.T, engine *StorageEngine, sql string) Result {
	t.Helper()
	cmd, err := parser.Parse(sql)
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	result, err := engine.Execute(cmd)
	if err != nil {
		t.Fatalf("execute %q: %v", sql, err)
	}
	return result
}

func execErr(t *testing.T, engine *StorageEngine, sql string) error {
	t.Helper()
	cmd, err := parser.Parse(sql)
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	_, err = engine.Execute(cmd)
	return err
}

func intField(t *testing.T, row types.Row, column string) int32 {
	t.Helper()
	v, ok := row.Get(column)
	if !ok {
		t.Fatalf("column %q missing from row", column)
	}
	if v.Kind != types.KindInteger {
		t.Fatalf("column %q: not an integer: %v", column, v)
	}
	return v.Int
}

func textField(t *testing.T, row types.Row, column string) string {
	t.Helper()
	v, ok := row.Get(column)
	if !ok {
		t.Fatalf("column %q missing from row", column)
	}
	return v.Text
}

func TestEndToEndScenarios(t *testing.T) {
	engine, device := newTestEngine(t)

	t.Run("basic crud", func(t *testing.T) {
		mustExec(t, engine, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)")
		mustExec(t, engine, "INSERT INTO users VALUES (1, 'Alice', 30)")
		res := mustExec(t, engine, "INSERT INTO users VALUES (2, 'Bob', 25)")
		if res.Status != "1 row inserted" {
			t.Errorf("insert status: %q", res.Status)
		}

		res = mustExec(t, engine, "SELECT * FROM users")
		if len(res.Rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(res.Rows))
		}
		if intField(t, res.Rows[0], "id") != 1 || textField(t, res.Rows[0], "name") != "Alice" || intField(t, res.Rows[0], "age") != 30 {
			t.Errorf("first row mismatch: %v", res.Rows[0].Values)
		}

		res = mustExec(t, engine, "SELECT * FROM users WHERE age > 28")
		if len(res.Rows) != 1 || textField(t, res.Rows[0], "name") != "Alice" {
			t.Fatalf("age filter: got %d rows", len(res.Rows))
		}

		res = mustExec(t, engine, "UPDATE users SET age = 31 WHERE id = 1")
		if res.Status != "1 row(s) updated" {
			t.Errorf("update status: %q", res.Status)
		}
		res = mustExec(t, engine, "SELECT * FROM users WHERE id = 1")
		if len(res.Rows) != 1 || intField(t, res.Rows[0], "age") != 31 {
			t.Fatalf("update not visible: %v", res.Rows)
		}

		res = mustExec(t, engine, "DELETE FROM users WHERE id = 2")
		if res.Status != "1 row(s) deleted" {
			t.Errorf("delete status: %q", res.Status)
		}
		res = mustExec(t, engine, "SELECT * FROM users")
		if len(res.Rows) != 1 {
			t.Fatalf("got %d rows after delete, want 1", len(res.Rows))
		}
	})

	t.Run("auto increment", func(t *testing.T) {
		mustExec(t, engine, "INSERT INTO users (name, age) VALUES ('Charlie', 20)")
		res := mustExec(t, engine, "SELECT * FROM users WHERE name = 'Charlie'")
		if len(res.Rows) != 1 {
			t.Fatalf("got %d rows", len(res.Rows))
		}
		// Bob was deleted, but his key stays burned: the counter remembers 2.
		if got := intField(t, res.Rows[0], "id"); got != 3 {
			t.Errorf("auto id: got %d, want 3", got)
		}
	})

	t.Run("rollback", func(t *testing.T) {
		mustExec(t, engine, "BEGIN")
		mustExec(t, engine, "INSERT INTO users VALUES (4, 'Dave', 40)")
		mustExec(t, engine, "ROLLBACK")

		res := mustExec(t, engine, "SELECT * FROM users WHERE name = 'Dave'")
		if len(res.Rows) != 0 {
			t.Fatalf("rolled-back row visible: %v", res.Rows)
		}
	})

	t.Run("commit and reopen", func(t *testing.T) {
		mustExec(t, engine, "BEGIN")
		mustExec(t, engine, "INSERT INTO users VALUES (5, 'Eve', 50)")
		mustExec(t, engine, "COMMIT")

		res := mustExec(t, engine, "SELECT * FROM users WHERE name = 'Eve'")
		if len(res.Rows) != 1 {
			t.Fatalf("committed row missing: got %d rows", len(res.Rows))
		}

		reloaded := reopenEngine(t, device)
		res = mustExec(t, reloaded, "SELECT * FROM users WHERE name = 'Eve'")
		if len(res.Rows) != 1 {
			t.Fatalf("committed row missing after reopen: got %d rows", len(res.Rows))
		}
	})

	t.Run("join", func(t *testing.T) {
		mustExec(t, engine, "CREATE TABLE orders (oid INTEGER PRIMARY KEY, uid INTEGER, item TEXT)")
		mustExec(t, engine, "INSERT INTO orders VALUES (100, 1, 'Laptop')")
		mustExec(t, engine, "INSERT INTO orders VALUES (101, 5, 'Phone')")

		res := mustExec(t, engine, "SELECT * FROM users JOIN orders ON users.id = orders.uid")
		if len(res.Rows) != 2 {
			t.Fatalf("got %d joined rows, want 2", len(res.Rows))
		}
		byItem := map[string]string{}
		for _, row := range res.Rows {
			byItem[textField(t, row, "item")] = textField(t, row, "name")
		}
		if byItem["Laptop"] != "Alice" || byItem["Phone"] != "Eve" {
			t.Errorf("join pairs: %v", byItem)
		}
	})
}

func TestRootSplitThroughEngine(t *testing.T) {
	engine, _ := newTestEngine(t)
	mustExec(t, engine, "CREATE TABLE docs (id INTEGER PRIMARY KEY, body TEXT)")

	body := make([]byte, 600)
	for i := range body {
		body[i] = 'a' + byte(i%26)
	}
	const count = 30
	for i := 1; i <= count; i++ {
		cmd := types.InsertCommand{
			Table:  "docs",
			Values: []types.Value{types.NewInt(int32(i)), types.NewText(string(body))},
		}
		if _, err := engine.Execute(cmd); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	res := mustExec(t, engine, "SELECT * FROM docs")
	if len(res.Rows) != count {
		t.Fatalf("got %d rows, want %d", len(res.Rows), count)
	}
	for i, row := range res.Rows {
		if got := intField(t, row, "id"); got != int32(i+1) {
			t.Fatalf("row %d: id %d out of order", i, got)
		}
		if textField(t, row, "body") != string(body) {
			t.Fatalf("row %d: body corrupted", i)
		}
	}

	// A WHERE on the primary key still finds each row exactly once (SELECT
	// filters a full scan of the split tree).
	for i := 1; i <= count; i++ {
		res := mustExec(t, engine, "SELECT * FROM docs WHERE id = "+strconv.Itoa(i))
		if len(res.Rows) != 1 {
			t.Fatalf("id %d: got %d rows", i, len(res.Rows))
		}
	}
}

func TestAutoIncrementMonotonicity(t *testing.T) {
	engine, _ := newTestEngine(t)
	mustExec(t, engine, "CREATE TABLE seqs (id INTEGER PRIMARY KEY, tag TEXT)")

	mustExec(t, engine, "INSERT INTO seqs (tag) VALUES ('a')")  // id 1
	mustExec(t, engine, "INSERT INTO seqs VALUES (10, 'b')")    // explicit 10
	mustExec(t, engine, "INSERT INTO seqs (tag) VALUES ('c')")  // id 11
	mustExec(t, engine, "INSERT INTO seqs VALUES (5, 'd')")     // explicit, below max
	mustExec(t, engine, "INSERT INTO seqs (tag) VALUES ('e')")  // id 12
	mustExec(t, engine, "INSERT INTO seqs (id, tag) VALUES (NULL, 'f')") // NULL marker, id 13

	res := mustExec(t, engine, "SELECT * FROM seqs")
	var ids []int32
	for _, row := range res.Rows {
		ids = append(ids, intField(t, row, "id"))
	}
	want := []int32{1, 5, 10, 11, 12, 13}
	if len(ids) != len(want) {
		t.Fatalf("got ids %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got ids %v, want %v", ids, want)
		}
	}
}

func TestDuplicateKeyLeavesTableUnchanged(t *testing.T) {
	engine, _ := newTestEngine(t)
	mustExec(t, engine, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	mustExec(t, engine, "INSERT INTO users VALUES (1, 'Alice')")

	err := execErr(t, engine, "INSERT INTO users VALUES (1, 'Impostor')")
	if err == nil {
		t.Fatal("duplicate key accepted")
	}

	res := mustExec(t, engine, "SELECT * FROM users")
	if len(res.Rows) != 1 || textField(t, res.Rows[0], "name") != "Alice" {
		t.Fatalf("table changed by rejected insert: %v", res.Rows)
	}
}

func TestSchemaValidation(t *testing.T) {
	engine, _ := newTestEngine(t)

	if err := execErr(t, engine, "CREATE TABLE t (a INTEGER, b TEXT)"); !errors.Is(err, ErrNoPrimaryKey) {
		t.Errorf("no pk: got %v", err)
	}
	if err := execErr(t, engine, "CREATE TABLE t (a TEXT PRIMARY KEY)"); !errors.Is(err, ErrPrimaryKeyNotInt) {
		t.Errorf("text pk: got %v", err)
	}

	mustExec(t, engine, "CREATE TABLE t (a INTEGER PRIMARY KEY, b TEXT)")
	if err := execErr(t, engine, "CREATE TABLE t (a INTEGER PRIMARY KEY)"); !errors.Is(err, ErrTableExists) {
		t.Errorf("duplicate table: got %v", err)
	}
	if err := execErr(t, engine, "SELECT * FROM missing"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("missing table: got %v", err)
	}
	if err := execErr(t, engine, "INSERT INTO t VALUES (1)"); !errors.Is(err, ErrColumnCountMismatch) {
		t.Errorf("short insert: got %v", err)
	}
	if err := execErr(t, engine, "INSERT INTO t (a, nope) VALUES (1, 'x')"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("unknown column: got %v", err)
	}
	if err := execErr(t, engine, "INSERT INTO t VALUES (1, 2)"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("type mismatch: got %v", err)
	}
	if err := execErr(t, engine, "INSERT INTO t VALUES ('one', 'x')"); !errors.Is(err, ErrInvalidPKValue) {
		t.Errorf("non-integer pk: got %v", err)
	}

	mustExec(t, engine, "INSERT INTO t VALUES (1, 'x')")
	if err := execErr(t, engine, "UPDATE t SET a = 2 WHERE a = 1"); !errors.Is(err, ErrCannotUpdatePK) {
		t.Errorf("pk update: got %v", err)
	}
	// Assigning the same primary key value is allowed.
	mustExec(t, engine, "UPDATE t SET a = 1, b = 'y' WHERE a = 1")
	res := mustExec(t, engine, "SELECT * FROM t WHERE a = 1")
	if len(res.Rows) != 1 || textField(t, res.Rows[0], "b") != "y" {
		t.Fatalf("same-pk update failed: %v", res.Rows)
	}
}

func TestTransactionalCreateTableRollsBack(t *testing.T) {
	engine, _ := newTestEngine(t)

	mustExec(t, engine, "BEGIN")
	mustExec(t, engine, "CREATE TABLE ghost (id INTEGER PRIMARY KEY)")
	mustExec(t, engine, "INSERT INTO ghost VALUES (1)")
	mustExec(t, engine, "ROLLBACK")

	if err := execErr(t, engine, "SELECT * FROM ghost"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("ghost table survived rollback: %v", err)
	}

	// The engine is fully usable afterwards.
	mustExec(t, engine, "CREATE TABLE real (id INTEGER PRIMARY KEY)")
	mustExec(t, engine, "INSERT INTO real VALUES (1)")
}

func TestTransactionDisciplineThroughEngine(t *testing.T) {
	engine, _ := newTestEngine(t)

	if err := execErr(t, engine, "COMMIT"); !errors.Is(err, virtualdisk.ErrNoTransaction) {
		t.Errorf("commit: got %v", err)
	}
	if err := execErr(t, engine, "ROLLBACK"); !errors.Is(err, virtualdisk.ErrNoTransaction) {
		t.Errorf("rollback: got %v", err)
	}
	mustExec(t, engine, "BEGIN")
	if err := execErr(t, engine, "BEGIN"); !errors.Is(err, virtualdisk.ErrTransactionActive) {
		t.Errorf("nested begin: got %v", err)
	}
	mustExec(t, engine, "COMMIT")
}

func TestLeftJoinBehavesAsInner(t *testing.T) {
	engine, _ := newTestEngine(t)
	mustExec(t, engine, "CREATE TABLE a (id INTEGER PRIMARY KEY, x TEXT)")
	mustExec(t, engine, "CREATE TABLE b (id INTEGER PRIMARY KEY, aid INTEGER)")
	mustExec(t, engine, "INSERT INTO a VALUES (1, 'one')")
	mustExec(t, engine, "INSERT INTO a VALUES (2, 'two')")
	mustExec(t, engine, "INSERT INTO b VALUES (7, 1)")

	res := mustExec(t, engine, "SELECT * FROM a LEFT JOIN b ON a.id = b.aid")
	if len(res.Rows) != 1 {
		t.Fatalf("got %d rows, want 1 (inner semantics)", len(res.Rows))
	}
	// The right table's conflicting `id` column is qualified, not clobbered.
	if got := intField(t, res.Rows[0], "id"); got != 1 {
		t.Errorf("base id clobbered: %d", got)
	}
	if got := intField(t, res.Rows[0], "b.id"); got != 7 {
		t.Errorf("qualified right id: got %d, want 7", got)
	}
}

func TestWeakCoercionInPredicates(t *testing.T) {
	engine, _ := newTestEngine(t)
	mustExec(t, engine, "CREATE TABLE w (id INTEGER PRIMARY KEY, label TEXT)")
	mustExec(t, engine, "INSERT INTO w VALUES (1, '10')")

	// Text '10' compares numerically against integer literals.
	res := mustExec(t, engine, "SELECT * FROM w WHERE label = 10")
	if len(res.Rows) != 1 {
		t.Errorf("weak equality failed: got %d rows", len(res.Rows))
	}
	res = mustExec(t, engine, "SELECT * FROM w WHERE label < 11")
	if len(res.Rows) != 1 {
		t.Errorf("weak ordering failed: got %d rows", len(res.Rows))
	}
	// And integer columns match quoted numbers.
	res = mustExec(t, engine, "SELECT * FROM w WHERE id = '1'")
	if len(res.Rows) != 1 {
		t.Errorf("quoted id match failed: got %d rows", len(res.Rows))
	}
}
