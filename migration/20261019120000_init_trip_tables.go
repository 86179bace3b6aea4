package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitTripTables, downInitTripTables)
}

func upInitTripTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE export_runs (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			record_count INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		CREATE TABLE trip_records (
			id UUID PRIMARY KEY,
			export_run_id UUID NOT NULL,
			borough VARCHAR(64) NOT NULL,
			pickup_datetime TIMESTAMPTZ,
			dropoff_datetime TIMESTAMPTZ,
			trip_distance DOUBLE PRECISION NOT NULL,
			fare_amount NUMERIC(10,2) NOT NULL,
			tip_amount NUMERIC(10,2) NOT NULL,
			total_amount NUMERIC(10,2) NOT NULL,
			payment_type VARCHAR(16) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_trip_records_run
				FOREIGN KEY(export_run_id)
				REFERENCES export_runs(id)
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_trip_records_run_id ON trip_records(export_run_id);`)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_trip_records_borough_pickup ON trip_records(borough, pickup_datetime DESC);`)
	return err
}

func downInitTripTables(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS trip_records;`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS export_runs;`)
	return err
}
