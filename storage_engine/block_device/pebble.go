package blockdevice

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"EmberDB/types"
)

// Key prefixes inside the Pebble keyspace. Page IDs are encoded big-endian so
// Pebble's iteration order matches page-ID order.
const (
	pagePrefix = 'p'
	metaPrefix = 'm'
)

// PebbleDevice persists pages and metadata in a Pebble store: one KV entry
// per page under `p/<id>`, one JSON-encoded entry per metadata key under
// `m/<key>`.
type PebbleDevice struct {
	db *pebble.DB
}

// OpenPebbleDevice opens (or creates) a Pebble database at dir.
func OpenPebbleDevice(dir string) (*PebbleDevice, error) {
	opts := &pebble.Options{
		MemTableSize:          16 << 20,
		L0CompactionThreshold: 4,
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("block device: open %s: %w", dir, err)
	}
	return &PebbleDevice{db: db}, nil
}

func pageKey(id types.PageID) []byte {
	key := make([]byte, 5)
	key[0] = pagePrefix
	binary.BigEndian.PutUint32(key[1:], uint32(id))
	return key
}

func metaKey(key string) []byte {
	return append([]byte{metaPrefix}, key...)
}

func (d *PebbleDevice) ReadPage(id types.PageID) ([]byte, error) {
	out := make([]byte, types.PageSize)
	val, closer, err := d.db.Get(pageKey(id))
	if err == pebble.ErrNotFound {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ReadPage: page %d: %w", id, err)
	}
	// val is only valid until closer.Close(), so copy first.
	copy(out, val)
	closer.Close()
	return out, nil
}

func (d *PebbleDevice) WritePage(id types.PageID, data []byte) error {
	if len(data) != types.PageSize {
		return fmt.Errorf("WritePage: page %d: expected %d bytes, got %d", id, types.PageSize, len(data))
	}
	if err := d.db.Set(pageKey(id), data, pebble.Sync); err != nil {
		return fmt.Errorf("WritePage: page %d: %w", id, err)
	}
	return nil
}

func (d *PebbleDevice) GetMeta(key string) (any, bool, error) {
	val, closer, err := d.db.Get(metaKey(key))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("GetMeta: key %q: %w", key, err)
	}
	defer closer.Close()

	var out any
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, false, fmt.Errorf("GetMeta: key %q: %w", key, err)
	}
	return out, true, nil
}

func (d *PebbleDevice) SetMeta(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("SetMeta: key %q: %w", key, err)
	}
	if err := d.db.Set(metaKey(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("SetMeta: key %q: %w", key, err)
	}
	return nil
}

func (d *PebbleDevice) Reset() error {
	// Both prefixes are below 0xff, so one range deletion clears everything.
	if err := d.db.DeleteRange([]byte{0}, []byte{0xff}, pebble.Sync); err != nil {
		return fmt.Errorf("Reset: %w", err)
	}
	return nil
}

func (d *PebbleDevice) Close() error {
	return d.db.Close()
}
