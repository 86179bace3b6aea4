package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"GCP_PROJECT_ID", "TAXI_DATASET", "TAXI_TRIPS_TABLE", "TAXI_ZONES_TABLE", "TAXI_PARTITIONS"} {
		t.Setenv(key, "")
	}
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	return len(strings.Split(strings.TrimSpace(string(body)), "\n"))
}

func TestGenerateCSV(t *testing.T) {
	dir := t.TempDir()
	out, err := runCommand(t, "generate", "--source", "synthetic", "--output-dir", dir,
		"--limit", "20", "--boroughs", "Manhattan,Staten Island", "--notify", "go_chan")
	require.NoError(t, err)
	assert.Contains(t, out, "All datasets generated successfully.")

	assert.Equal(t, 21, countLines(t, filepath.Join(dir, "manhattan_trips.csv")))
	assert.Equal(t, 21, countLines(t, filepath.Join(dir, "staten_island_trips.csv")))

	header := strings.SplitN(readFile(t, filepath.Join(dir, "manhattan_trips.csv")), "\n", 2)[0]
	assert.Equal(t, "pickup_datetime,dropoff_datetime,trip_distance,fare_amount,payment_type,total_amount,borough", header)

	out, err = runCommand(t, "metrics", "--input-dir", dir)
	require.NoError(t, err)
	var metrics map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &metrics))
	assert.EqualValues(t, 40, metrics["totalTrips"])
	assert.Len(t, metrics["revenueByBorough"], 2)
}

func TestGenerateJSON(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "generate", "--source", "synthetic", "--output-dir", dir,
		"--limit", "5", "--boroughs", "Queens", "--sink", "json")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(dir, "queens_trips.json"))), &records))
	assert.Len(t, records, 5)
	assert.Equal(t, "Queens", records[0]["borough"])
}

func TestGenerateRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "generate", "--source", "synthetic", "--output-dir", dir, "--sink", "parquet")
	assert.ErrorContains(t, err, "unknown sink")

	_, err = runCommand(t, "generate", "--source", "synthetic", "--output-dir", dir, "--notify", "kafka")
	assert.ErrorContains(t, err, "unknown notify mode")

	_, err = runCommand(t, "generate", "--source", "synthetic", "--output-dir", dir, "--limit", "0")
	assert.ErrorContains(t, err, "limit must be positive")

	_, err = runCommand(t, "generate", "--source", "oracle", "--output-dir", dir)
	assert.ErrorContains(t, err, "unknown source")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetch(t *testing.T) {
	dir := t.TempDir()
	out, err := runCommand(t, "fetch", "--source", "synthetic", "--output-dir", dir, "--limit", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully fetched 30 rows.")
	assert.Contains(t, out, "First 5 rows:")
	assert.Contains(t, out, "non-null")

	total := 0
	for _, name := range []string{"manhattan_trips.csv", "queens_trips.csv", "brooklyn_trips.csv"} {
		total += countLines(t, filepath.Join(dir, name)) - 1
	}
	assert.Equal(t, 30, total)
}

func TestFetchLogsSelectedSource(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	_, err := runCommand(t, "fetch", "--source", "synthetic", "--output-dir", t.TempDir(), "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Querying synthetic trips...")
	assert.NotContains(t, logs.String(), "BigQuery")
}

func TestCounts(t *testing.T) {
	out, err := runCommand(t, "counts", "--source", "synthetic")
	require.NoError(t, err)
	assert.Contains(t, out, "Record counts by borough:")
	assert.Contains(t, out, "Brooklyn: 5000")
	assert.Contains(t, out, "Bronx: 5000")
}

func TestTablesAndSchema(t *testing.T) {
	out, err := runCommand(t, "tables", "--source", "synthetic")
	require.NoError(t, err)
	assert.Contains(t, out, "Tables contained in 'bigquery-public-data.new_york_taxi_trips':")
	assert.Contains(t, out, "new_york_taxi_trips.tlc_yellow_trips_2022")
	assert.Contains(t, out, "new_york_taxi_trips.taxi_zone_geom")

	out, err = runCommand(t, "schema", "--source", "synthetic")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema for bigquery-public-data.new_york_taxi_trips.taxi_zone_geom:")
	assert.Contains(t, out, "zone_id (STRING)")
	assert.Contains(t, out, "borough (STRING)")

	_, err = runCommand(t, "schema", "--source", "synthetic", "not-a-table")
	assert.Error(t, err)
}

func TestWatchNeedsBroker(t *testing.T) {
	_, err := runCommand(t, "watch", "--mq", "go_chan")
	assert.ErrorContains(t, err, "needs a broker")
}

func TestBoroughsOrDefault(t *testing.T) {
	assert.Equal(t, []string{"Bronx"}, boroughsOrDefault([]string{" Bronx ", ""}, defaultDatasetBoroughs))
	assert.Equal(t, defaultDatasetBoroughs, boroughsOrDefault(nil, defaultDatasetBoroughs))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(body)
}
