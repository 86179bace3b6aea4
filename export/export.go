package export

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"nyctaxi/taxi"
	"nyctaxi/warehouse/warehouse"
)

// Result describes one finished export.
type Result struct {
	Type        string    `json:"type"` // "csv", "json", "postgres"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Sink persists a result table under a dataset name, usually a borough.
type Sink interface {
	Write(ctx context.Context, name string, table *warehouse.Table) (Result, error)
}

// FileName is the dataset file name for a borough, e.g. "staten_island_trips.csv".
func FileName(name, ext string) string {
	return taxi.Slug(name) + "_trips." + ext
}

// SplitByBorough groups rows by their borough column, keeping row order and the
// column list. Rows without a borough are dropped.
func SplitByBorough(table *warehouse.Table) map[string]*warehouse.Table {
	out := make(map[string]*warehouse.Table)
	for _, row := range table.Records() {
		borough, _ := row[taxi.ColBorough].(string)
		if borough == "" {
			continue
		}
		part, ok := out[borough]
		if !ok {
			part = &warehouse.Table{Columns: table.Columns, Rows: []warehouse.Row{}}
			out[borough] = part
		}
		part.Rows = append(part.Rows, row)
	}
	return out
}

// SortedKeys returns the boroughs of a split in name order.
func SortedKeys(parts map[string]*warehouse.Table) []string {
	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Columns returns the table columns, falling back to the sorted keys of the
// first row when the result carried none.
func Columns(table *warehouse.Table) []string {
	if len(table.Columns) > 0 || table.Len() == 0 {
		return table.Columns
	}
	cols := make([]string, 0, len(table.Rows[0]))
	for k := range table.Rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// writeFile creates dir/name and fills it with write. On any error, including
// a failed close, the file is removed.
func writeFile(dir, name string, write func(io.Writer) error) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path = filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
		if err != nil {
			if rmErr := os.Remove(path); rmErr != nil {
				log.Printf("Failed to remove partial file %s: %v", path, rmErr)
			}
			path = ""
		}
	}()

	if err := write(f); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
