package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbt "nyctaxi/db/db"
	"nyctaxi/export"
	"nyctaxi/taxi"
	"nyctaxi/warehouse/warehouse"
)

const batchSize = 500

// TripStore persists datasets into the export_runs and trip_records tables.
type TripStore struct {
	db *gorm.DB
}

func NewTripStore(db *gorm.DB) *TripStore {
	return &TripStore{db: db}
}

var _ dbt.DatasetStore = (*TripStore)(nil)

// Write stores the table as one export run in a single transaction.
func (s *TripStore) Write(ctx context.Context, name string, table *warehouse.Table) (export.Result, error) {
	trips, err := taxi.FromTable(table)
	if err != nil {
		return export.Result{}, fmt.Errorf("failed to convert %s: %w", name, err)
	}

	run := ExportRunModel{ID: uuid.New(), Name: name, RecordCount: len(trips)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to create export run: %w", err)
		}
		if len(trips) == 0 {
			return nil
		}
		models := make([]TripRecordModel, 0, len(trips))
		for _, trip := range trips {
			models = append(models, toModel(run.ID, name, trip))
		}
		if err := tx.CreateInBatches(&models, batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert trips for run %s: %w", run.ID, err)
		}
		return nil
	})
	if err != nil {
		return export.Result{}, err
	}
	return export.Result{
		Type:        "postgres",
		Path:        TripRecordModel{}.TableName(),
		RecordCount: len(trips),
		ExportedAt:  run.CreatedAt.UTC(),
	}, nil
}

// Runs lists export runs, newest first.
func (s *TripStore) Runs(ctx context.Context) ([]dbt.ExportRun, error) {
	var models []ExportRunModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list export runs: %w", err)
	}
	runs := make([]dbt.ExportRun, 0, len(models))
	for _, m := range models {
		runs = append(runs, dbt.ExportRun{ID: m.ID, Name: m.Name, RecordCount: m.RecordCount, CreatedAt: m.CreatedAt.UTC()})
	}
	return runs, nil
}

// Trips returns the trips of one run in pickup order, newest first.
func (s *TripStore) Trips(ctx context.Context, runID uuid.UUID) ([]taxi.TripRecord, error) {
	return s.tripsWhere(ctx, "export_run_id = ?", runID)
}

// LatestTrips returns the trips of the newest run of every dataset name.
func (s *TripStore) LatestTrips(ctx context.Context) ([]taxi.TripRecord, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return nil, err
	}
	ids := dbt.LatestRunIDs(runs)
	if len(ids) == 0 {
		return []taxi.TripRecord{}, nil
	}
	return s.tripsWhere(ctx, "export_run_id IN ?", ids)
}

func (s *TripStore) tripsWhere(ctx context.Context, query string, args ...any) ([]taxi.TripRecord, error) {
	var models []TripRecordModel
	result := s.db.WithContext(ctx).Where(query, args...).Order("pickup_datetime DESC").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load trips: %w", result.Error)
	}
	trips := make([]taxi.TripRecord, 0, len(models))
	for _, m := range models {
		trips = append(trips, fromModel(m))
	}
	return trips, nil
}

func toModel(runID uuid.UUID, name string, trip taxi.TripRecord) TripRecordModel {
	borough := trip.Borough
	if borough == "" {
		borough = name
	}
	return TripRecordModel{
		ID:              uuid.New(),
		ExportRunID:     runID,
		Borough:         borough,
		PickupDatetime:  timePtr(trip.PickupDatetime),
		DropoffDatetime: timePtr(trip.DropoffDatetime),
		TripDistance:    trip.TripDistance,
		FareAmount:      trip.FareAmount,
		TipAmount:       trip.TipAmount,
		TotalAmount:     trip.TotalAmount,
		PaymentType:     trip.PaymentType,
	}
}

func fromModel(m TripRecordModel) taxi.TripRecord {
	trip := taxi.TripRecord{
		TripDistance: m.TripDistance,
		FareAmount:   m.FareAmount,
		TipAmount:    m.TipAmount,
		TotalAmount:  m.TotalAmount,
		PaymentType:  m.PaymentType,
		Borough:      m.Borough,
	}
	if m.PickupDatetime != nil {
		trip.PickupDatetime = m.PickupDatetime.UTC()
	}
	if m.DropoffDatetime != nil {
		trip.DropoffDatetime = m.DropoffDatetime.UTC()
	}
	return trip
}

// zero times are stored as NULL
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
