package virtualdisk

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	blockdevice "EmberDB/storage_engine/block_device"
	"EmberDB/types"
)

const (
	cacheNumCounters = 10_000
	cacheMaxCost     = 16 << 20 // 16 MB of cached pages
	cacheBufferItems = 64
)

func New(device blockdevice.BlockDevice) (*VirtualDisk, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[uint32, []byte]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("virtual disk: page cache: %w", err)
	}

	vd := &VirtualDisk{
		device: device,
		cache:  cache,
	}
	if err := vd.loadMaxPageID(); err != nil {
		cache.Close()
		return nil, err
	}
	return vd, nil
}

// ReadPage returns a private copy of the page: the transaction buffer wins,
// then the cache, then the device (caching the result).
func (vd *VirtualDisk) ReadPage(id types.PageID) ([]byte, error) {
	if vd.tx != nil {
		if data, ok := vd.tx.pages[id]; ok {
			return append([]byte(nil), data...), nil
		}
	}
	if data, ok := vd.cache.Get(uint32(id)); ok {
		return append([]byte(nil), data...), nil
	}

	data, err := vd.device.ReadPage(id)
	if err != nil {
		return nil, fmt.Errorf("virtual disk: read page %d: %w", id, err)
	}
	vd.cache.Set(uint32(id), append([]byte(nil), data...), types.PageSize)
	return data, nil
}

// WritePage buffers the page during a transaction, otherwise writes through
// to the cache and the device.
func (vd *VirtualDisk) WritePage(id types.PageID, data []byte) error {
	if len(data) != types.PageSize {
		return fmt.Errorf("virtual disk: write page %d: expected %d bytes, got %d", id, types.PageSize, len(data))
	}
	if vd.tx != nil {
		vd.tx.pages[id] = append([]byte(nil), data...)
		return nil
	}
	return vd.writeThrough(id, data)
}

func (vd *VirtualDisk) writeThrough(id types.PageID, data []byte) error {
	if err := vd.device.WritePage(id, data); err != nil {
		return fmt.Errorf("virtual disk: write page %d: %w", id, err)
	}
	vd.cache.Set(uint32(id), append([]byte(nil), data...), types.PageSize)

	if id > vd.maxPageID {
		vd.maxPageID = id
		if err := vd.persistMaxPageID(); err != nil {
			return err
		}
	}
	return nil
}

// AllocatePage hands out the next page ID. The fresh ID never collides with
// any previously allocated ID in this database's lifetime: the counter is
// persisted immediately outside a transaction and on Commit inside one
// (Rollback reloads it, undoing transactional allocations).
func (vd *VirtualDisk) AllocatePage() (types.PageID, error) {
	vd.maxPageID++
	if vd.tx == nil {
		if err := vd.persistMaxPageID(); err != nil {
			return 0, err
		}
	}
	return vd.maxPageID, nil
}

func (vd *VirtualDisk) GetMeta(key string) (any, bool, error) {
	if vd.tx != nil {
		if v, ok := vd.tx.meta[key]; ok {
			return v, true, nil
		}
	}
	return vd.device.GetMeta(key)
}

func (vd *VirtualDisk) SetMeta(key string, value any) error {
	if vd.tx != nil {
		vd.tx.meta[key] = value
		return nil
	}
	return vd.device.SetMeta(key, value)
}

// Refresh drops every cached page and reloads the allocation counter from
// the device. Rollback uses it; the engine's catalog reload pairs with it.
func (vd *VirtualDisk) Refresh() error {
	vd.cache.Clear()
	return vd.loadMaxPageID()
}

func (vd *VirtualDisk) Close() error {
	vd.cache.Close()
	return vd.device.Close()
}

func (vd *VirtualDisk) loadMaxPageID() error {
	v, ok, err := vd.device.GetMeta(maxPageIDKey)
	if err != nil {
		return fmt.Errorf("virtual disk: load %s: %w", maxPageIDKey, err)
	}
	if !ok {
		vd.maxPageID = 0
		return nil
	}
	n, err := metaNumber(v)
	if err != nil {
		return fmt.Errorf("virtual disk: load %s: %w", maxPageIDKey, err)
	}
	vd.maxPageID = types.PageID(n)
	return nil
}

func (vd *VirtualDisk) persistMaxPageID() error {
	if err := vd.device.SetMeta(maxPageIDKey, uint32(vd.maxPageID)); err != nil {
		return fmt.Errorf("virtual disk: persist %s: %w", maxPageIDKey, err)
	}
	return nil
}

// metaNumber converts a metadata value back to an integer. JSON decoding
// hands numbers back as float64.
func metaNumber(v any) (uint32, error) {
	switch n := v.(type) {
	case float64:
		return uint32(n), nil
	case uint32:
		return n, nil
	case int:
		return uint32(n), nil
	default:
		return 0, fmt.Errorf("unexpected metadata number type %T", v)
	}
}
