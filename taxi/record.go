package taxi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nyctaxi/warehouse/warehouse"
)

// Layouts accepted when a timestamp arrives as text (CSV files, JSON round trips).
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05-07:00",
}

// ParseTime parses a timestamp in any of the layouts the exporters and BigQuery produce.
// Zone-less values are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FromRow builds a TripRecord from a result row. Missing columns stay zero and
// numeric text that does not parse reads as 0; a column of the wrong type is an error.
func FromRow(row warehouse.Row) (TripRecord, error) {
	var (
		rec TripRecord
		err error
	)
	if rec.PickupDatetime, err = timeField(row, ColPickupDatetime); err != nil {
		return TripRecord{}, err
	}
	if rec.DropoffDatetime, err = timeField(row, ColDropoffDatetime); err != nil {
		return TripRecord{}, err
	}
	if rec.TripDistance, err = floatField(row, ColTripDistance); err != nil {
		return TripRecord{}, err
	}
	if rec.FareAmount, err = floatField(row, ColFareAmount); err != nil {
		return TripRecord{}, err
	}
	if rec.TipAmount, err = floatField(row, ColTipAmount); err != nil {
		return TripRecord{}, err
	}
	if rec.TotalAmount, err = floatField(row, ColTotalAmount); err != nil {
		return TripRecord{}, err
	}
	if rec.PaymentType, err = stringField(row, ColPaymentType); err != nil {
		return TripRecord{}, err
	}
	if rec.Borough, err = stringField(row, ColBorough); err != nil {
		return TripRecord{}, err
	}
	return rec, nil
}

// FromTable converts every row of t.
func FromTable(t *warehouse.Table) ([]TripRecord, error) {
	trips := make([]TripRecord, 0, t.Len())
	for i, row := range t.Records() {
		rec, err := FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		trips = append(trips, rec)
	}
	return trips, nil
}

// Row returns the record restricted to columns. Unknown column names are skipped.
func (r TripRecord) Row(columns []string) warehouse.Row {
	row := make(warehouse.Row, len(columns))
	for _, c := range columns {
		switch c {
		case ColPickupDatetime:
			row[c] = r.PickupDatetime
		case ColDropoffDatetime:
			row[c] = r.DropoffDatetime
		case ColTripDistance:
			row[c] = r.TripDistance
		case ColFareAmount:
			row[c] = r.FareAmount
		case ColTipAmount:
			row[c] = r.TipAmount
		case ColTotalAmount:
			row[c] = r.TotalAmount
		case ColPaymentType:
			row[c] = r.PaymentType
		case ColBorough:
			row[c] = r.Borough
		}
	}
	return row
}

// Slug turns a borough name into the token used in file names and routing keys.
func Slug(borough string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(borough)), " ", "_")
}

func timeField(row warehouse.Row, col string) (time.Time, error) {
	switch v := row[col].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v.UTC(), nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		t, err := ParseTime(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("column %s: %w", col, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}

func floatField(row warehouse.Row, col string) (float64, error) {
	switch v := row[col].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, nil
		}
		return f, nil
	default:
		return 0, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}

func stringField(row warehouse.Row, col string) (string, error) {
	switch v := row[col].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}
