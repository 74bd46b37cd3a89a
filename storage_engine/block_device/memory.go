package blockdevice

import (
	"encoding/json"
	"fmt"

	"EmberDB/types"
)

// MemoryDevice keeps pages and metadata in process memory. It backs tests and
// ephemeral REPL sessions.
type MemoryDevice struct {
	pages map[types.PageID][]byte
	meta  map[string]any
}

func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{
		pages: make(map[types.PageID][]byte),
		meta:  make(map[string]any),
	}
}

func (d *MemoryDevice) ReadPage(id types.PageID) ([]byte, error) {
	out := make([]byte, types.PageSize)
	if data, ok := d.pages[id]; ok {
		copy(out, data)
	}
	return out, nil
}

func (d *MemoryDevice) WritePage(id types.PageID, data []byte) error {
	if len(data) != types.PageSize {
		return fmt.Errorf("WritePage: page %d: expected %d bytes, got %d", id, types.PageSize, len(data))
	}
	d.pages[id] = append([]byte(nil), data...)
	return nil
}

func (d *MemoryDevice) GetMeta(key string) (any, bool, error) {
	v, ok := d.meta[key]
	if !ok {
		return nil, false, nil
	}
	// Decode a stored copy so callers can't alias the device's value.
	out, err := jsonRoundTrip(v)
	if err != nil {
		return nil, false, fmt.Errorf("GetMeta: key %q: %w", key, err)
	}
	return out, true, nil
}

func (d *MemoryDevice) SetMeta(key string, value any) error {
	stored, err := jsonRoundTrip(value)
	if err != nil {
		return fmt.Errorf("SetMeta: key %q: %w", key, err)
	}
	d.meta[key] = stored
	return nil
}

func (d *MemoryDevice) Reset() error {
	d.pages = make(map[types.PageID][]byte)
	d.meta = make(map[string]any)
	return nil
}

func (d *MemoryDevice) Close() error {
	return nil
}

// jsonRoundTrip deep-copies a structured metadata value through its JSON
// encoding, the same normalization the Pebble backend applies on disk.
func jsonRoundTrip(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
