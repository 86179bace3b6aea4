package warehouse_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyctaxi/warehouse/warehouse"
)

func TestParseTableRef(t *testing.T) {
	ref, err := warehouse.ParseTableRef("bigquery-public-data.new_york_taxi_trips.taxi_zone_geom")
	require.NoError(t, err)
	assert.Equal(t, "bigquery-public-data", ref.ProjectID)
	assert.Equal(t, "new_york_taxi_trips", ref.DatasetID)
	assert.Equal(t, "taxi_zone_geom", ref.TableID)
	assert.Equal(t, "bigquery-public-data.new_york_taxi_trips.taxi_zone_geom", ref.String())

	for _, bad := range []string{
		"",
		"dataset.table",
		"a.b.c.d",
		"proj.data set.table",
		"proj.dataset.tab`le",
		"Proj.dataset.table",
	} {
		_, err := warehouse.ParseTableRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDatasetRef(t *testing.T) {
	ref, err := warehouse.ParseDatasetRef("bigquery-public-data.new_york_taxi_trips")
	require.NoError(t, err)
	assert.Equal(t, "bigquery-public-data.new_york_taxi_trips", ref.String())

	_, err = warehouse.ParseDatasetRef("bigquery-public-data.new_york_taxi_trips.zones")
	assert.Error(t, err)
	_, err = warehouse.ParseDatasetRef("nodot")
	assert.Error(t, err)
}

func TestTableRecordsNeverNil(t *testing.T) {
	var nilTable *warehouse.Table
	assert.Equal(t, 0, nilTable.Len())

	body, err := json.Marshal(nilTable.Records())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))

	body, err = json.Marshal((&warehouse.Table{Columns: []string{"borough"}}).Records())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))
}

func TestStatementParam(t *testing.T) {
	stmt := warehouse.Statement{Params: []warehouse.Param{{Name: "borough_0", Value: "Queens"}}}
	v, ok := stmt.Param("borough_0")
	assert.True(t, ok)
	assert.Equal(t, "Queens", v)
	_, ok = stmt.Param("limit_0")
	assert.False(t, ok)
}
