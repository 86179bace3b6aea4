package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"nyctaxi/export"
	"nyctaxi/warehouse/warehouse"
)

// printHead writes the first n rows as an aligned table.
func printHead(w io.Writer, table *warehouse.Table, n int) {
	columns := export.Columns(table)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	rows := table.Records()
	if n > len(rows) {
		n = len(rows)
	}
	cells := make([]string, len(columns))
	for _, row := range rows[:n] {
		for i, c := range columns {
			cells[i] = cellText(row[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

// printColumnSummary writes one line per column with its non-null count and value type.
func printColumnSummary(w io.Writer, table *warehouse.Table) {
	columns := export.Columns(table)
	fmt.Fprintf(w, "%d rows, %d columns\n", table.Len(), len(columns))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tColumn\tNon-Null Count\tType")
	for i, c := range columns {
		nonNull := 0
		kind := "null"
		for _, row := range table.Records() {
			if v := row[c]; v != nil {
				nonNull++
				if kind == "null" {
					kind = fmt.Sprintf("%T", v)
				}
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%d non-null\t%s\n", i, c, nonNull, kind)
	}
	tw.Flush()
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
