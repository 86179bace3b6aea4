package mem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	dbt "nyctaxi/db/db"
	"nyctaxi/export"
	"nyctaxi/taxi"
	"nyctaxi/warehouse/warehouse"
)

// inMemoryDatasetStore is an in-memory implementation of dbt.DatasetStore.
type inMemoryDatasetStore struct {
	runs  []dbt.ExportRun // in insertion order
	trips map[uuid.UUID][]taxi.TripRecord

	mu  sync.RWMutex
	now func() time.Time
}

func NewInMemoryDatasetStore() dbt.DatasetStore {
	return &inMemoryDatasetStore{
		trips: make(map[uuid.UUID][]taxi.TripRecord),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *inMemoryDatasetStore) Write(ctx context.Context, name string, table *warehouse.Table) (export.Result, error) {
	if err := ctx.Err(); err != nil {
		return export.Result{}, err
	}
	trips, err := taxi.FromTable(table)
	if err != nil {
		return export.Result{}, fmt.Errorf("failed to convert %s: %w", name, err)
	}
	for i := range trips {
		if trips[i].Borough == "" {
			trips[i].Borough = name
		}
	}
	sortNewestFirst(trips)

	s.mu.Lock()
	defer s.mu.Unlock()
	run := dbt.ExportRun{ID: uuid.New(), Name: name, RecordCount: len(trips), CreatedAt: s.now()}
	s.runs = append(s.runs, run)
	s.trips[run.ID] = trips
	return export.Result{Type: "memory", Path: run.ID.String(), RecordCount: len(trips), ExportedAt: run.CreatedAt}, nil
}

func (s *inMemoryDatasetStore) Runs(ctx context.Context) ([]dbt.ExportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]dbt.ExportRun, len(s.runs))
	for i, r := range s.runs {
		out[len(s.runs)-1-i] = r
	}
	return out, nil
}

func (s *inMemoryDatasetStore) Trips(ctx context.Context, runID uuid.UUID) ([]taxi.TripRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// copy so callers cannot modify the stored slice
	return append([]taxi.TripRecord{}, s.trips[runID]...), nil
}

func (s *inMemoryDatasetStore) LatestTrips(ctx context.Context) ([]taxi.TripRecord, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := []taxi.TripRecord{}
	for _, id := range dbt.LatestRunIDs(runs) {
		all = append(all, s.trips[id]...)
	}
	sortNewestFirst(all)
	return all, nil
}

func sortNewestFirst(trips []taxi.TripRecord) {
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].PickupDatetime.After(trips[j].PickupDatetime)
	})
}
