package mem

import (
	"context"
	"fmt"
	"log"
	"time"

	"nyctaxi/taxi"
	"nyctaxi/warehouse/warehouse"
)

const DefaultPoolSize = 5000

// tripColumns is the column set a synthetic trip row carries when the statement
// does not name its output columns.
var tripColumns = []string{
	taxi.ColPickupDatetime,
	taxi.ColDropoffDatetime,
	taxi.ColTripDistance,
	taxi.ColFareAmount,
	taxi.ColTipAmount,
	taxi.ColTotalAmount,
	taxi.ColPaymentType,
	taxi.ColBorough,
}

// SyntheticSource serves generated trips instead of querying BigQuery. It does not
// parse SQL: it reads the bound parameters of the statement builders in package
// query and answers with trips of the requested boroughs and sizes. Every
// borough holds PoolSize trips.
type SyntheticSource struct {
	Seed       int64
	Base       time.Time
	PoolSize   int
	TripsTable warehouse.TableRef
	ZonesTable warehouse.TableRef
}

// NewSyntheticSource creates a source named after the real tables so catalog
// commands print the same names offline.
func NewSyntheticSource(seed int64, tripsTable, zonesTable string) (*SyntheticSource, error) {
	trips, err := warehouse.ParseTableRef(tripsTable)
	if err != nil {
		return nil, err
	}
	zones, err := warehouse.ParseTableRef(zonesTable)
	if err != nil {
		return nil, err
	}
	return &SyntheticSource{
		Seed:       seed,
		Base:       time.Date(2022, time.December, 1, 0, 0, 0, 0, time.UTC),
		PoolSize:   DefaultPoolSize,
		TripsTable: trips,
		ZonesTable: zones,
	}, nil
}

func (s *SyntheticSource) Close() error { return nil }

func (s *SyntheticSource) RunQuery(ctx context.Context, stmt warehouse.Statement) (*warehouse.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	columns := stmt.Columns
	if columns == nil {
		columns = tripColumns
	}

	var trips []taxi.TripRecord
	switch {
	case hasParam(stmt, "borough_0"):
		for i := 0; ; i++ {
			borough, ok := stmt.Param(fmt.Sprintf("borough_%d", i))
			if !ok {
				break
			}
			b, limit, err := s.boroughLimit(stmt, borough, fmt.Sprintf("limit_%d", i))
			if err != nil {
				return nil, err
			}
			trips = append(trips, s.generator(int64(i)).Trips(limit, b)...)
		}
	case hasParam(stmt, "borough"):
		borough, _ := stmt.Param("borough")
		b, limit, err := s.boroughLimit(stmt, borough, "limit")
		if err != nil {
			return nil, err
		}
		trips = s.generator(0).Trips(limit, b)
	case hasParam(stmt, "boroughs"):
		boroughs, err := stringsParam(stmt, "boroughs")
		if err != nil {
			return nil, err
		}
		if !hasParam(stmt, "limit") {
			return s.counts(boroughs), nil
		}
		limit, err := intParam(stmt, "limit")
		if err != nil {
			return nil, err
		}
		trips = s.generator(0).Trips(min(limit, s.PoolSize*len(boroughs)), boroughs...)
	default:
		return nil, fmt.Errorf("synthetic source cannot answer statement %q", stmt.Name)
	}

	table := &warehouse.Table{Columns: columns, Rows: make([]warehouse.Row, 0, len(trips))}
	for _, trip := range trips {
		table.Rows = append(table.Rows, trip.Row(columns))
	}
	log.Printf("Synthetic %s returned %d rows", stmt.Name, len(table.Rows))
	return table, nil
}

func (s *SyntheticSource) ListTables(ctx context.Context, dataset warehouse.TableRef) ([]warehouse.TableRef, error) {
	var refs []warehouse.TableRef
	for _, t := range []warehouse.TableRef{s.TripsTable, s.ZonesTable} {
		if t.ProjectID == dataset.ProjectID && t.DatasetID == dataset.DatasetID {
			refs = append(refs, t)
		}
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("dataset %s not found", dataset)
	}
	return refs, nil
}

func (s *SyntheticSource) TableSchema(ctx context.Context, table warehouse.TableRef) ([]warehouse.Field, error) {
	switch table {
	case s.TripsTable:
		return []warehouse.Field{
			{Name: "vendor_id", Type: "STRING"},
			{Name: taxi.ColPickupDatetime, Type: "DATETIME"},
			{Name: taxi.ColDropoffDatetime, Type: "DATETIME"},
			{Name: "passenger_count", Type: "INTEGER"},
			{Name: taxi.ColTripDistance, Type: "NUMERIC"},
			{Name: taxi.ColPaymentType, Type: "STRING"},
			{Name: taxi.ColFareAmount, Type: "NUMERIC"},
			{Name: taxi.ColTipAmount, Type: "NUMERIC"},
			{Name: taxi.ColTotalAmount, Type: "NUMERIC"},
			{Name: "pickup_location_id", Type: "STRING"},
			{Name: "dropoff_location_id", Type: "STRING"},
		}, nil
	case s.ZonesTable:
		return []warehouse.Field{
			{Name: "zone_id", Type: "STRING"},
			{Name: "zone_name", Type: "STRING"},
			{Name: taxi.ColBorough, Type: "STRING"},
			{Name: "zone_geom", Type: "GEOGRAPHY"},
		}, nil
	default:
		return nil, fmt.Errorf("table %s not found", table)
	}
}

func (s *SyntheticSource) generator(offset int64) *taxi.Generator {
	return taxi.NewGenerator(s.Seed+offset, s.Base)
}

func (s *SyntheticSource) counts(boroughs []string) *warehouse.Table {
	table := &warehouse.Table{Columns: []string{taxi.ColBorough, "count"}}
	for _, b := range boroughs {
		table.Rows = append(table.Rows, warehouse.Row{taxi.ColBorough: b, "count": int64(s.PoolSize)})
	}
	return table
}

func (s *SyntheticSource) boroughLimit(stmt warehouse.Statement, borough any, limitName string) (string, int, error) {
	b, ok := borough.(string)
	if !ok {
		return "", 0, fmt.Errorf("statement %q: borough parameter is %T, want string", stmt.Name, borough)
	}
	limit, err := intParam(stmt, limitName)
	if err != nil {
		return "", 0, err
	}
	return b, min(limit, s.PoolSize), nil
}

func hasParam(stmt warehouse.Statement, name string) bool {
	_, ok := stmt.Param(name)
	return ok
}

func intParam(stmt warehouse.Statement, name string) (int, error) {
	v, ok := stmt.Param(name)
	if !ok {
		return 0, fmt.Errorf("statement %q: missing parameter %s", stmt.Name, name)
	}
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("statement %q: parameter %s is %T, want integer", stmt.Name, name, v)
	}
}

func stringsParam(stmt warehouse.Statement, name string) ([]string, error) {
	v, _ := stmt.Param(name)
	list, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("statement %q: parameter %s is %T, want []string", stmt.Name, name, v)
	}
	return list, nil
}
