package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"nyctaxi/taxi"
	"nyctaxi/warehouse/warehouse"
)

const csvTimeLayout = "2006-01-02 15:04:05"

// CSVSink writes one CSV file per dataset into Dir.
type CSVSink struct {
	Dir string
}

func (s CSVSink) Write(ctx context.Context, name string, table *warehouse.Table) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	path, err := writeFile(s.Dir, FileName(name, "csv"), func(w io.Writer) error {
		return WriteCSV(w, table)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Type: "csv", Path: path, RecordCount: table.Len(), ExportedAt: time.Now().UTC()}, nil
}

// WriteCSV writes a header row and one line per row.
func WriteCSV(w io.Writer, table *warehouse.Table) error {
	cw := csv.NewWriter(w)
	columns := Columns(table)
	if err := cw.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range table.Records() {
		for j, c := range columns {
			record[j] = formatCell(row[c])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.UTC().Format(csvTimeLayout)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// ReadTripsCSV parses a dataset CSV back into trips. The first line is the header;
// columns are matched by name so extra columns are ignored.
func ReadTripsCSV(r io.Reader) ([]taxi.TripRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("CSV is empty")
	}

	header := lines[0]
	trips := make([]taxi.TripRecord, 0, len(lines)-1)
	for i, line := range lines[1:] {
		row := make(warehouse.Row, len(header))
		for j, col := range header {
			if j < len(line) {
				row[col] = line[j]
			}
		}
		trip, err := taxi.FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err) // +2 for the header and 1-based lines
		}
		trips = append(trips, trip)
	}
	return trips, nil
}
