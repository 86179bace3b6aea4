package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLatestRunIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	runs := []ExportRun{
		{ID: a, Name: "Queens"},
		{ID: b, Name: "Bronx"},
		{ID: c, Name: "Queens"},
	}
	assert.Equal(t, []uuid.UUID{a, b}, LatestRunIDs(runs))
	assert.Empty(t, LatestRunIDs(nil))
}
