package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"nyctaxi/export"
	"nyctaxi/query"
	"nyctaxi/warehouse/warehouse"
)

func fetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the newest trips and split them by borough",
		Long: `Fetch the newest trips (every trip column plus borough) picked up in the
given boroughs, print the first rows and a column summary, then write one CSV file
per borough.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir, _ := cmd.Flags().GetString("output-dir")
			limit, _ := cmd.Flags().GetInt("limit")
			boroughs, _ := cmd.Flags().GetStringSlice("boroughs")
			boroughs = boroughsOrDefault(boroughs, defaultDatasetBoroughs)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			stmt, err := query.RecentTrips(query.TablesFromConfig(cfg), boroughs, limit)
			if err != nil {
				return err
			}

			src, err := openSource(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeSource(src)

			log.Printf("Querying %s...", sourceLabel(cmd))
			table, err := src.RunQuery(cmd.Context(), stmt)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Successfully fetched %d rows.\n", table.Len())
			fmt.Fprintln(out, "\nFirst 5 rows:")
			printHead(out, table, 5)
			fmt.Fprintln(out, "\nColumns:")
			printColumnSummary(out, table)
			fmt.Fprintln(out)

			parts := export.SplitByBorough(table)
			sink := export.CSVSink{Dir: outputDir}
			for _, b := range boroughs {
				part, ok := parts[b]
				if !ok {
					part = &warehouse.Table{Columns: table.Columns}
				}
				res, err := sink.Write(cmd.Context(), b, part)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved %d rows to %s\n", res.RecordCount, res.Path)
			}
			return nil
		},
	}

	cmd.Flags().String("output-dir", ".", "directory for the per-borough CSV files")
	cmd.Flags().Int("limit", query.DefaultRecentLimit, "number of trips to fetch")
	cmd.Flags().StringSlice("boroughs", defaultDatasetBoroughs, "boroughs to fetch")

	return cmd
}
