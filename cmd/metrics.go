package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	dbt "nyctaxi/db/db"
	"nyctaxi/db/pg"
	"nyctaxi/export"
	"nyctaxi/taxi"
)

func metricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Compute dashboard metrics from exported datasets",
		Long: `Read every *_trips.csv file of a directory (or the newest Postgres export
of each borough) and print the dashboard metrics as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputDir, _ := cmd.Flags().GetString("input-dir")
			fromDB, _ := cmd.Flags().GetBool("postgres")

			var (
				trips []taxi.TripRecord
				err   error
			)
			if fromDB {
				db, dbErr := pg.InitPostgresGORM(pg.CreateDSN())
				if dbErr != nil {
					return dbErr
				}
				defer pg.CloseGORM(db)
				trips, err = storedTrips(cmd.Context(), pg.NewTripStore(db))
			} else {
				trips, err = export.ReadTripsDir(inputDir)
			}
			if err != nil {
				return err
			}

			body, err := json.MarshalIndent(taxi.CalculateMetrics(trips), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode metrics: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}

	cmd.Flags().String("input-dir", "public", "directory holding the *_trips.csv datasets")
	cmd.Flags().Bool("postgres", false, "read the datasets from Postgres instead of CSV files")

	return cmd
}

// storedTrips loads the newest dataset of every borough from store.
func storedTrips(ctx context.Context, store dbt.DatasetStore) ([]taxi.TripRecord, error) {
	runs, err := store.Runs(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no datasets stored yet, run generate --sink postgres first")
	}
	return store.LatestTrips(ctx)
}
