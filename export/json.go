package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"nyctaxi/warehouse/warehouse"
)

// JSONSink writes one JSON array of records per dataset into Dir.
type JSONSink struct {
	Dir string
}

func (s JSONSink) Write(ctx context.Context, name string, table *warehouse.Table) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	body, err := json.Marshal(table.Records())
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path, err := writeFile(s.Dir, FileName(name, "json"), func(w io.Writer) error {
		_, err := w.Write(body)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Type: "json", Path: path, RecordCount: table.Len(), ExportedAt: time.Now().UTC()}, nil
}
