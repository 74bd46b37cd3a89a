// Command inspect_pages dumps the page headers and catalog of a pebble-backed
// database directory. Debugging aid; read-only.
package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/alecthomas/kong"

	blockdevice "EmberDB/storage_engine/block_device"
	"EmberDB/types"
)

var CLI struct {
	DataDir string `arg:"" help:"Database directory." type:"path"`
}

func main() {
	kctx := kong.Parse(&CLI)

	device, err := blockdevice.OpenPebbleDevice(CLI.DataDir)
	kctx.FatalIfErrorf(err)
	defer device.Close()

	if tables, ok, err := device.GetMeta("tables"); err == nil && ok {
		data, _ := json.MarshalIndent(tables, "", "  ")
		fmt.Printf("catalog:\n%s\n", data)
	}

	maxPage := uint32(0)
	if v, ok, err := device.GetMeta("max_page_id"); err == nil && ok {
		if n, isNum := v.(float64); isNum {
			maxPage = uint32(n)
		}
	}
	fmt.Printf("max_page_id: %d\n", maxPage)

	for id := types.PageID(1); uint32(id) <= maxPage; id++ {
		page, err := device.ReadPage(id)
		if err != nil {
			fmt.Printf("page %4d: read error: %v\n", id, err)
			continue
		}
		kind := "leaf"
		if page[0] == 0 {
			kind = "internal"
		}
		cells := binary.BigEndian.Uint16(page[1:])
		parent := binary.BigEndian.Uint32(page[3:])
		fmt.Printf("page %4d: %-8s cells=%-4d parent=%d\n", id, kind, cells, parent)
	}
}
