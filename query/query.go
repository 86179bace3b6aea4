package query

import (
	"fmt"
	"strings"
	"text/template"

	"nyctaxi/config"
	"nyctaxi/taxi"
	"nyctaxi/warehouse/warehouse"
)

const (
	DefaultExportLimit = 3000
	DefaultRecentLimit = 10000
)

// Tables names the trip fact table and the zone lookup table it joins.
type Tables struct {
	Trips string
	Zones string
}

// TablesFromConfig takes the table names out of cfg.
func TablesFromConfig(cfg config.Config) Tables {
	return Tables{Trips: cfg.TripsTable, Zones: cfg.ZonesTable}
}

func (t Tables) validate() error {
	if _, err := warehouse.ParseTableRef(t.Trips); err != nil {
		return fmt.Errorf("trips table: %w", err)
	}
	if _, err := warehouse.ParseTableRef(t.Zones); err != nil {
		return fmt.Errorf("zones table: %w", err)
	}
	return nil
}

// SampleColumns are the columns served by the responder.
var SampleColumns = []string{
	taxi.ColPickupDatetime,
	taxi.ColDropoffDatetime,
	taxi.ColTripDistance,
	taxi.ColFareAmount,
	taxi.ColBorough,
}

// ExportColumns are the columns of the per-borough dataset files.
var ExportColumns = []string{
	taxi.ColPickupDatetime,
	taxi.ColDropoffDatetime,
	taxi.ColTripDistance,
	taxi.ColFareAmount,
	taxi.ColPaymentType,
	taxi.ColTotalAmount,
	taxi.ColBorough,
}

// MetricsColumns are the columns the dashboard metrics are computed from.
var MetricsColumns = []string{
	taxi.ColPickupDatetime,
	taxi.ColDropoffDatetime,
	taxi.ColTripDistance,
	taxi.ColFareAmount,
	taxi.ColTipAmount,
	taxi.ColPaymentType,
	taxi.ColTotalAmount,
	taxi.ColBorough,
}

var funcs = template.FuncMap{
	"ident": func(name string) string { return "`" + name + "`" },
	"cols": func(cols []string) string {
		out := make([]string, len(cols))
		for i, c := range cols {
			if c == taxi.ColBorough {
				out[i] = "z.borough"
			} else {
				out[i] = "t." + c
			}
		}
		return strings.Join(out, ",\n        ")
	},
}

const fromJoin = `FROM
        {{ident .Trips}} AS t
    JOIN
        {{ident .Zones}} AS z
    ON
        t.pickup_location_id = z.zone_id`

var (
	partitionSampleTmpl = template.Must(template.New("partition_sample").Funcs(funcs).Parse(
		`{{range $i, $p := .Partitions}}{{if $i}}
UNION ALL
{{end}}SELECT * FROM (
    SELECT
        {{cols $.Columns}}
    {{template "from" $}}
    WHERE
        z.borough = @borough_{{$i}}
    ORDER BY t.pickup_datetime DESC
    LIMIT @limit_{{$i}}
){{end}}`))

	boroughExportTmpl = template.Must(template.New("borough_export").Funcs(funcs).Parse(
		`SELECT
        {{cols .Columns}}
    {{template "from" .}}
    WHERE
        z.borough = @borough
    ORDER BY
        t.pickup_datetime DESC
    LIMIT @limit`))

	recentTripsTmpl = template.Must(template.New("recent_trips").Funcs(funcs).Parse(
		`SELECT
        t.*,
        z.borough
    {{template "from" .}}
    WHERE
        z.borough IN UNNEST(@boroughs)
    ORDER BY
        t.pickup_datetime DESC
    LIMIT @limit`))

	boroughCountsTmpl = template.Must(template.New("borough_counts").Funcs(funcs).Parse(
		`SELECT
        z.borough,
        COUNT(*) AS count
    {{template "from" .}}
    WHERE
        z.borough IN UNNEST(@boroughs)
    GROUP BY
        z.borough`))
)

func init() {
	for _, tmpl := range []*template.Template{partitionSampleTmpl, boroughExportTmpl, recentTripsTmpl, boroughCountsTmpl} {
		template.Must(tmpl.New("from").Parse(fromJoin))
	}
}

type tmplData struct {
	Tables
	Columns    []string
	Partitions []config.Partition
}

func render(tmpl *template.Template, data tmplData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// PartitionSample builds the responder query: for each partition the newest
// Limit trips of its borough, combined with UNION ALL. Partition i binds
// @borough_i and @limit_i.
func PartitionSample(tables Tables, partitions []config.Partition) (warehouse.Statement, error) {
	return partitionSample("partition_sample", tables, partitions, SampleColumns)
}

// MetricsSample is PartitionSample over MetricsColumns, so tips, totals and
// payment types are available to the metrics.
func MetricsSample(tables Tables, partitions []config.Partition) (warehouse.Statement, error) {
	return partitionSample("metrics_sample", tables, partitions, MetricsColumns)
}

func partitionSample(name string, tables Tables, partitions []config.Partition, columns []string) (warehouse.Statement, error) {
	if err := tables.validate(); err != nil {
		return warehouse.Statement{}, err
	}
	if len(partitions) == 0 {
		return warehouse.Statement{}, fmt.Errorf("at least one partition is required")
	}
	stmt := warehouse.Statement{Name: name, Columns: columns}
	for i, p := range partitions {
		if strings.TrimSpace(p.Borough) == "" {
			return warehouse.Statement{}, fmt.Errorf("partition %d: empty borough", i)
		}
		if p.Limit <= 0 {
			return warehouse.Statement{}, fmt.Errorf("partition %d (%s): limit must be positive, got %d", i, p.Borough, p.Limit)
		}
		stmt.Params = append(stmt.Params,
			warehouse.Param{Name: fmt.Sprintf("borough_%d", i), Value: p.Borough},
			warehouse.Param{Name: fmt.Sprintf("limit_%d", i), Value: int64(p.Limit)},
		)
	}

	sql, err := render(partitionSampleTmpl, tmplData{Tables: tables, Columns: columns, Partitions: partitions})
	if err != nil {
		return warehouse.Statement{}, err
	}
	stmt.SQL = sql
	return stmt, nil
}

// BoroughExport builds the dataset query for one borough: the newest limit trips
// with payment and total columns.
func BoroughExport(tables Tables, borough string, limit int) (warehouse.Statement, error) {
	if err := tables.validate(); err != nil {
		return warehouse.Statement{}, err
	}
	if strings.TrimSpace(borough) == "" {
		return warehouse.Statement{}, fmt.Errorf("borough is required")
	}
	if limit <= 0 {
		return warehouse.Statement{}, fmt.Errorf("limit must be positive, got %d", limit)
	}
	sql, err := render(boroughExportTmpl, tmplData{Tables: tables, Columns: ExportColumns})
	if err != nil {
		return warehouse.Statement{}, err
	}
	return warehouse.Statement{
		Name:    "borough_export_" + taxi.Slug(borough),
		SQL:     sql,
		Columns: ExportColumns,
		Params: []warehouse.Param{
			{Name: "borough", Value: borough},
			{Name: "limit", Value: int64(limit)},
		},
	}, nil
}

// RecentTrips builds the query returning every trip column plus borough for the
// newest limit trips picked up in any of boroughs.
func RecentTrips(tables Tables, boroughs []string, limit int) (warehouse.Statement, error) {
	if err := tables.validate(); err != nil {
		return warehouse.Statement{}, err
	}
	if err := checkBoroughs(boroughs); err != nil {
		return warehouse.Statement{}, err
	}
	if limit <= 0 {
		return warehouse.Statement{}, fmt.Errorf("limit must be positive, got %d", limit)
	}
	sql, err := render(recentTripsTmpl, tmplData{Tables: tables})
	if err != nil {
		return warehouse.Statement{}, err
	}
	return warehouse.Statement{
		Name: "recent_trips",
		SQL:  sql,
		Params: []warehouse.Param{
			{Name: "boroughs", Value: boroughs},
			{Name: "limit", Value: int64(limit)},
		},
	}, nil
}

// BoroughCounts builds the query counting trips per borough.
func BoroughCounts(tables Tables, boroughs []string) (warehouse.Statement, error) {
	if err := tables.validate(); err != nil {
		return warehouse.Statement{}, err
	}
	if err := checkBoroughs(boroughs); err != nil {
		return warehouse.Statement{}, err
	}
	sql, err := render(boroughCountsTmpl, tmplData{Tables: tables})
	if err != nil {
		return warehouse.Statement{}, err
	}
	return warehouse.Statement{
		Name:    "borough_counts",
		SQL:     sql,
		Columns: []string{taxi.ColBorough, "count"},
		Params:  []warehouse.Param{{Name: "boroughs", Value: boroughs}},
	}, nil
}

func checkBoroughs(boroughs []string) error {
	if len(boroughs) == 0 {
		return fmt.Errorf("at least one borough is required")
	}
	for i, b := range boroughs {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("borough %d is empty", i)
		}
	}
	return nil
}
