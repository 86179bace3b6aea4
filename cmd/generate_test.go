package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyctaxi/config"
	dbmem "nyctaxi/db/mem"
	"nyctaxi/mq/mq"
	"nyctaxi/query"
	"nyctaxi/warehouse/mem"
	"nyctaxi/warehouse/warehouse"
)

var testTables = query.Tables{
	Trips: "bigquery-public-data.new_york_taxi_trips.tlc_yellow_trips_2022",
	Zones: "bigquery-public-data.new_york_taxi_trips.taxi_zone_geom",
}

func exportStatements(t *testing.T, boroughs []string, limit int) map[string]warehouse.Statement {
	t.Helper()
	stmts := make(map[string]warehouse.Statement)
	for _, b := range boroughs {
		stmt, err := query.BoroughExport(testTables, b, limit)
		require.NoError(t, err)
		stmts[b] = stmt
	}
	return stmts
}

func TestRunExportsIntoStore(t *testing.T) {
	ctx := context.Background()
	src, err := mem.NewSyntheticSource(3, testTables.Trips, testTables.Zones)
	require.NoError(t, err)
	store := dbmem.NewInMemoryDatasetStore()

	n, err := newNotifier(ctx, mq.ModeGoChan, config.Config{})
	require.NoError(t, err)

	boroughs := []string{"Queens", "Bronx"}
	var out bytes.Buffer
	require.NoError(t, runExports(ctx, src, store, boroughs, exportStatements(t, boroughs, 12), n, &out))
	n.Close()
	assert.Contains(t, out.String(), "Saved 12 records to")

	// a second export of Queens replaces the first in the latest view
	require.NoError(t, runExports(ctx, src, store, []string{"Queens"}, exportStatements(t, []string{"Queens"}, 4), nil, &out))

	trips, err := storedTrips(ctx, store)
	require.NoError(t, err)
	assert.Len(t, trips, 16)

	perBorough := map[string]int{}
	for _, trip := range trips {
		perBorough[trip.Borough]++
	}
	assert.Equal(t, map[string]int{"Queens": 4, "Bronx": 12}, perBorough)
}

func TestRunExportsStopsOnQueryError(t *testing.T) {
	store := dbmem.NewInMemoryDatasetStore()
	runner := mem.NewFailingRunner(errors.New("403 Access Denied"))

	var out bytes.Buffer
	err := runExports(context.Background(), runner, store, []string{"Queens"}, exportStatements(t, []string{"Queens"}, 5), nil, &out)
	assert.ErrorContains(t, err, "failed to fetch Queens: 403 Access Denied")

	_, err = storedTrips(context.Background(), store)
	assert.ErrorContains(t, err, "no datasets stored yet")
}

func TestNotifierNone(t *testing.T) {
	n, err := newNotifier(context.Background(), mq.ModeNone, config.Config{})
	require.NoError(t, err)
	assert.Nil(t, n.queue)
	n.Close()
}
