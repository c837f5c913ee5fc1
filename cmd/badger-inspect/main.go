package main

import (
	"chat-hub/repositories"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	flag "github.com/spf13/pflag"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	// Index keys are skipped unless asked for
	prefix := flag.String("prefix", "", "Prefix to scan")
	indexes := flag.Bool("indexes", false, "Show index keys")
	limit := flag.Int("limit", 0, "Maximum number of keys, 0 for all")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	entries, err := repositories.Scan(db, *prefix, *limit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Timestamp", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, e := range entries {
		if e.Kind == "INDEX" && !*indexes {
			continue
		}
		at := ""
		if !e.At.IsZero() {
			at = e.At.Format("2006-01-02 15:04:05")
		}
		table.Append([]string{e.Key, e.Kind, at, e.Detail})
	}
	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "Log truncate required") {
		// A writable open truncates the value log, then read-only again
		repaired, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil).WithBypassLockGuard(true))
		if err != nil {
			return nil, fmt.Errorf("repair failed: %w", err)
		}
		_ = repaired.Close()
		return badger.Open(opts)
	}
	return db, err
}
