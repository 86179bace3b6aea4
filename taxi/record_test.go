package taxi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyctaxi/warehouse/warehouse"
)

func TestFromRow(t *testing.T) {
	pickup := time.Date(2022, 12, 31, 23, 59, 0, 0, time.UTC)

	t.Run("typed values", func(t *testing.T) {
		rec, err := FromRow(warehouse.Row{
			ColPickupDatetime:  pickup,
			ColDropoffDatetime: pickup.Add(10 * time.Minute),
			ColTripDistance:    1.2,
			ColFareAmount:      8.5,
			ColTotalAmount:     int64(12),
			ColPaymentType:     int64(1),
			ColBorough:         "Queens",
		})
		require.NoError(t, err)
		assert.Equal(t, pickup, rec.PickupDatetime)
		assert.Equal(t, pickup.Add(10*time.Minute), rec.DropoffDatetime)
		assert.Equal(t, 1.2, rec.TripDistance)
		assert.Equal(t, 8.5, rec.FareAmount)
		assert.Equal(t, 12.0, rec.TotalAmount)
		assert.Equal(t, "1", rec.PaymentType)
		assert.Equal(t, "Queens", rec.Borough)
		assert.Zero(t, rec.TipAmount)
	})

	t.Run("text values", func(t *testing.T) {
		rec, err := FromRow(warehouse.Row{
			ColPickupDatetime: "2022-12-31 23:59:00",
			ColTripDistance:   "1.25",
			ColFareAmount:     "n/a",
			ColBorough:        "Bronx",
		})
		require.NoError(t, err)
		assert.Equal(t, pickup, rec.PickupDatetime)
		assert.Equal(t, 1.25, rec.TripDistance)
		assert.Zero(t, rec.FareAmount)
	})

	t.Run("wrong types", func(t *testing.T) {
		_, err := FromRow(warehouse.Row{ColTripDistance: true})
		assert.Error(t, err)
		_, err = FromRow(warehouse.Row{ColPickupDatetime: "yesterday"})
		assert.Error(t, err)
		_, err = FromRow(warehouse.Row{ColBorough: 3.5})
		assert.Error(t, err)
	})
}

func TestFromTableAndRow(t *testing.T) {
	columns := []string{ColPickupDatetime, ColTripDistance, ColBorough, "unknown"}
	rec := TripRecord{
		PickupDatetime: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		TripDistance:   3,
		Borough:        "Brooklyn",
	}
	row := rec.Row(columns)
	assert.Len(t, row, 3)

	trips, err := FromTable(&warehouse.Table{Columns: columns, Rows: []warehouse.Row{row}})
	require.NoError(t, err)
	assert.Equal(t, []TripRecord{rec}, trips)

	_, err = FromTable(&warehouse.Table{Rows: []warehouse.Row{{ColTripDistance: []int{1}}}})
	assert.ErrorContains(t, err, "row 0")
}

func TestParseTime(t *testing.T) {
	want := time.Date(2022, 6, 1, 8, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2022-06-01T08:30:00Z",
		"2022-06-01 08:30:00",
		"2022-06-01T08:30:00",
		"2022-06-01T08:30:00.000",
		"2022-06-01T04:30:00-04:00",
	} {
		got, err := ParseTime(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), "%s parsed as %s", s, got)
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "manhattan", Slug("Manhattan"))
	assert.Equal(t, "staten_island", Slug(" Staten Island "))
}

func TestGenerator(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trips := NewGenerator(7, base).Trips(200, "Queens", "Bronx")
	require.Len(t, trips, 200)

	again := NewGenerator(7, base).Trips(200, "Queens", "Bronx")
	assert.Equal(t, trips, again, "same seed must give the same trips")

	for i, trip := range trips {
		assert.Contains(t, []string{"Queens", "Bronx"}, trip.Borough)
		assert.Contains(t, []string{"1", "2", "3", "4"}, trip.PaymentType)
		assert.GreaterOrEqual(t, trip.TripDistance, 0.5)
		assert.LessOrEqual(t, trip.TripDistance, 15.5)
		assert.True(t, trip.DropoffDatetime.After(trip.PickupDatetime) || trip.DropoffDatetime.Equal(trip.PickupDatetime))
		assert.GreaterOrEqual(t, trip.TotalAmount, trip.FareAmount+trip.TipAmount)
		assert.False(t, trip.PickupDatetime.Before(base))
		if i > 0 {
			assert.False(t, trip.PickupDatetime.After(trips[i-1].PickupDatetime), "trips must be newest first")
		}
	}

	all := NewGenerator(1, base).Trips(50)
	assert.Len(t, all, 50)
}
