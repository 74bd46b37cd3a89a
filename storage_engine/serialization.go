package storageengine

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"EmberDB/types"
)

/*
Row codec: a row is the concatenation, in schema column order, of
`value_len:uint16 | value_bytes` records. INTEGER is 4 bytes big-endian
signed; TEXT is the UTF-8 bytes. The schema drives both directions; the
buffer itself carries no column names or types.
*/

// EncodeRow serializes row in schema column order. Every column must be
// present and non-null.
func EncodeRow(cols []types.ColumnDef, row types.Row) ([]byte, error) {
	buf := new(bytes.Buffer)

	for _, col := range cols {
		v, ok := row.Get(col.Name)
		if !ok || v.IsNull() {
			return nil, fmt.Errorf("column %s: %w", col.Name, ErrNullValue)
		}

		switch col.Type {
		case types.TypeInteger:
			if v.Kind != types.KindInteger {
				return nil, fmt.Errorf("column %s: expected INTEGER, got %q: %w", col.Name, v.String(), ErrTypeMismatch)
			}
			var rec [6]byte
			binary.BigEndian.PutUint16(rec[0:2], 4)
			binary.BigEndian.PutUint32(rec[2:6], uint32(v.Int))
			buf.Write(rec[:])

		case types.TypeText:
			if v.Kind != types.KindText {
				return nil, fmt.Errorf("column %s: expected TEXT, got %q: %w", col.Name, v.String(), ErrTypeMismatch)
			}
			data := []byte(v.Text)
			if len(data) > 65535 {
				return nil, fmt.Errorf("column %s: text of %d bytes exceeds encoding limit", col.Name, len(data))
			}
			var size [2]byte
			binary.BigEndian.PutUint16(size[:], uint16(len(data)))
			buf.Write(size[:])
			buf.Write(data)

		default:
			return nil, fmt.Errorf("column %s: unsupported type %q", col.Name, col.Type)
		}
	}

	return buf.Bytes(), nil
}

// DecodeRow reads records back in schema column order. A buffer that runs
// short stops the decode and returns the partial row; missing tail columns
// are absent, not an error, so older rows survive schema growth.
func DecodeRow(data []byte, cols []types.ColumnDef) (types.Row, error) {
	row := types.NewRow()
	offset := 0

	for _, col := range cols {
		if offset+2 > len(data) {
			break
		}
		size := int(binary.BigEndian.Uint16(data[offset:]))
		if offset+2+size > len(data) {
			break
		}
		offset += 2
		value := data[offset : offset+size]
		offset += size

		switch col.Type {
		case types.TypeInteger:
			if size != 4 {
				return types.Row{}, fmt.Errorf("column %s: integer record of %d bytes", col.Name, size)
			}
			row.Set(col.Name, types.NewInt(int32(binary.BigEndian.Uint32(value))))
		case types.TypeText:
			row.Set(col.Name, types.NewText(string(value)))
		default:
			return types.Row{}, fmt.Errorf("column %s: unsupported type %q", col.Name, col.Type)
		}
	}

	return row, nil
}
