package storageengine

import (
	"errors"
	"testing"

	"EmberDB/types"
)

var userColumns = []types.ColumnDef{
	{Name: "id", Type: types.TypeInteger, IsPrimaryKey: true},
	{Name: "name", Type: types.TypeText},
	{Name: "age", Type: types.TypeInteger},
}

func TestRowCodecRoundTrip(t *testing.T) {
	row := types.NewRow()
	row.Set("id", types.NewInt(1))
	row.Set("name", types.NewText("Alice"))
	row.Set("age", types.NewInt(30))

	encoded, err := EncodeRow(userColumns, row)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRow(encoded, userColumns)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, col := range userColumns {
		want, _ := row.Get(col.Name)
		got, ok := decoded.Get(col.Name)
		if !ok {
			t.Fatalf("column %s missing after decode", col.Name)
		}
		if got != want {
			t.Errorf("column %s: got %v, want %v", col.Name, got, want)
		}
	}
}

func TestRowCodecNegativeIntAndEmptyText(t *testing.T) {
	row := types.NewRow()
	row.Set("id", types.NewInt(-42))
	row.Set("name", types.NewText(""))
	row.Set("age", types.NewInt(0))

	encoded, err := EncodeRow(userColumns, row)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRow(encoded, userColumns)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, _ := decoded.Get("id"); v.Int != -42 {
		t.Errorf("id: got %d", v.Int)
	}
	if v, ok := decoded.Get("name"); !ok || v.Text != "" {
		t.Errorf("name: got %v ok=%v", v, ok)
	}
}

func TestEncodeMissingColumnFails(t *testing.T) {
	row := types.NewRow()
	row.Set("id", types.NewInt(1))
	row.Set("age", types.NewInt(30))
	// name left unset

	if _, err := EncodeRow(userColumns, row); !errors.Is(err, ErrNullValue) {
		t.Fatalf("got %v, want ErrNullValue", err)
	}

	row.Set("name", types.Null())
	if _, err := EncodeRow(userColumns, row); !errors.Is(err, ErrNullValue) {
		t.Fatalf("explicit null: got %v, want ErrNullValue", err)
	}
}

func TestEncodeTypeMismatch(t *testing.T) {
	row := types.NewRow()
	row.Set("id", types.NewInt(1))
	row.Set("name", types.NewText("Alice"))
	row.Set("age", types.NewText("thirty"))

	if _, err := EncodeRow(userColumns, row); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("got %v, want ErrTypeMismatch", err)
	}
}

func TestDecodeTruncatedBufferReturnsPartialRow(t *testing.T) {
	row := types.NewRow()
	row.Set("id", types.NewInt(1))
	row.Set("name", types.NewText("Alice"))
	row.Set("age", types.NewInt(30))

	encoded, err := EncodeRow(userColumns, row)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Drop the trailing age record: the row decodes as if the column were
	// added after this row was written.
	truncated := encoded[:len(encoded)-6]
	decoded, err := DecodeRow(truncated, userColumns)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := decoded.Get("id"); !ok {
		t.Error("id missing from partial row")
	}
	if _, ok := decoded.Get("name"); !ok {
		t.Error("name missing from partial row")
	}
	if _, ok := decoded.Get("age"); ok {
		t.Error("truncated column decoded anyway")
	}
}
