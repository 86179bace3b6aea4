package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upMoneyDoublePrecision, downMoneyDoublePrecision)
}

func upMoneyDoublePrecision(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		ALTER TABLE trip_records
			ALTER COLUMN fare_amount TYPE DOUBLE PRECISION,
			ALTER COLUMN tip_amount TYPE DOUBLE PRECISION,
			ALTER COLUMN total_amount TYPE DOUBLE PRECISION;
	`)
	return err
}

func downMoneyDoublePrecision(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		ALTER TABLE trip_records
			ALTER COLUMN fare_amount TYPE NUMERIC(10,2),
			ALTER COLUMN tip_amount TYPE NUMERIC(10,2),
			ALTER COLUMN total_amount TYPE NUMERIC(10,2);
	`)
	return err
}
