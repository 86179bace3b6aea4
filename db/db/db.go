package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nyctaxi/export"
	"nyctaxi/taxi"
)

// ExportRun is one dataset written to a store.
type ExportRun struct {
	ID          uuid.UUID
	Name        string
	RecordCount int
	CreatedAt   time.Time
}

// DatasetStore keeps exported datasets so they can be read back later.
type DatasetStore interface {
	export.Sink
	// Runs lists export runs, newest first.
	Runs(ctx context.Context) ([]ExportRun, error)
	// Trips returns the trips of one run, newest pickup first.
	Trips(ctx context.Context, runID uuid.UUID) ([]taxi.TripRecord, error)
	// LatestTrips returns the trips of the newest run of every dataset name.
	LatestTrips(ctx context.Context) ([]taxi.TripRecord, error)
}

// LatestRunIDs picks the newest run per name from runs ordered newest first.
func LatestRunIDs(runs []ExportRun) []uuid.UUID {
	seen := make(map[string]bool)
	var ids []uuid.UUID
	for _, r := range runs {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		ids = append(ids, r.ID)
	}
	return ids
}
