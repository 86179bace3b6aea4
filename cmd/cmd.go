package cmd

import (
	"github.com/spf13/cobra"

	"nyctaxi/config"
)

var RootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "query the NYC yellow taxi dataset",
		Long: `nyctaxi queries the public NYC yellow taxi trips in BigQuery. It serves a
borough sample over HTTP and exports per-borough datasets for the dashboard.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("source", sourceBigQuery, "data source (bigquery, synthetic)")
	root.PersistentFlags().Int64("seed", 42, "seed for the synthetic source")
	root.PersistentFlags().String("project", "", "GCP project ID (overrides GCP_PROJECT_ID)")

	root.AddCommand(serverCommand())
	root.AddCommand(generateCommand())
	root.AddCommand(fetchCommand())
	root.AddCommand(countsCommand())
	root.AddCommand(tablesCommand())
	root.AddCommand(schemaCommand())
	root.AddCommand(metricsCommand())
	root.AddCommand(watchCommand())
	root.AddCommand(migrateCommand())
	return root
}
