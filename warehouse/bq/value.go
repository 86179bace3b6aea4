package bq

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// normalizeValue converts a BigQuery cell into a value that encodes cleanly as JSON and CSV.
// DATETIME columns carry no zone; they are read as UTC.
func normalizeValue(v bigquery.Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool, int64, float64, string:
		return val, nil
	case []byte:
		return val, nil
	case time.Time:
		return val.UTC(), nil
	case civil.DateTime:
		return val.In(time.UTC), nil
	case civil.Date:
		return val.String(), nil
	case civil.Time:
		return val.String(), nil
	case *big.Rat:
		if val == nil {
			return nil, nil
		}
		f, _ := val.Float64()
		return f, nil
	case []bigquery.Value:
		out := make([]any, len(val))
		for i, item := range val {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
