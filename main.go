package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"EmberDB/internal/logging"
	"EmberDB/query_parser/parser"
	storageengine "EmberDB/storage_engine"
	blockdevice "EmberDB/storage_engine/block_device"
	virtualdisk "EmberDB/storage_engine/virtual_disk"
)

// CLI defines the command-line interface for the ember REPL.
var CLI struct {
	Backend   string   `help:"Storage backend." enum:"memory,pebble" default:"memory"`
	DataDir   string   `help:"Data directory for the pebble backend." default:"ember-data" type:"path"`
	LogLevel  string   `help:"Log level." enum:"debug,info,warn,error" default:"info"`
	LogFormat string   `help:"Log format." enum:"text,json" default:"text"`
	Execute   []string `short:"e" help:"Execute the given statements and exit."`
}

func main() {
	kctx := kong.Parse(&CLI)
	logging.Init(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	var device blockdevice.BlockDevice
	if CLI.Backend == "pebble" {
		var err error
		device, err = blockdevice.OpenPebbleDevice(CLI.DataDir)
		kctx.FatalIfErrorf(err)
	} else {
		device = blockdevice.NewMemoryDevice()
	}

	disk, err := virtualdisk.New(device)
	kctx.FatalIfErrorf(err)
	defer disk.Close()

	engine, err := storageengine.NewStorageEngine(disk)
	kctx.FatalIfErrorf(err)

	if len(CLI.Execute) > 0 {
		for _, statement := range CLI.Execute {
			runStatement(engine, statement)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("ember> ")

		if !scanner.Scan() { // Ctrl+D pressed
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}
		runStatement(engine, line)
	}
}

func runStatement(engine *storageengine.StorageEngine, statement string) {
	cmd, err := parser.Parse(statement)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	result, err := engine.Execute(cmd)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printResult(result)
}

func printResult(result storageengine.Result) {
	if result.Columns == nil {
		fmt.Println(result.Status)
		return
	}

	widths := make([]int, len(result.Columns))
	for i, col := range result.Columns {
		widths[i] = len(col)
	}
	cells := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		line := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			if v, ok := row.Get(col); ok {
				line[i] = v.String()
			}
			if len(line[i]) > widths[i] {
				widths[i] = len(line[i])
			}
		}
		cells = append(cells, line)
	}

	printLine := func(fields []string) {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = fmt.Sprintf("%-*s", widths[i], f)
		}
		fmt.Println(strings.Join(parts, " | "))
	}

	printLine(result.Columns)
	dashes := make([]string, len(result.Columns))
	for i := range dashes {
		dashes[i] = strings.Repeat("-", widths[i])
	}
	fmt.Println(strings.Join(dashes, "-+-"))
	for _, line := range cells {
		printLine(line)
	}
	fmt.Printf("(%d row(s))\n", len(result.Rows))
}
