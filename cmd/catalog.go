package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"nyctaxi/query"
	"nyctaxi/warehouse/warehouse"
)

var defaultCountBoroughs = []string{"Brooklyn", "Bronx"}

func countsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Count trips per borough",
		RunE: func(cmd *cobra.Command, args []string) error {
			boroughs, _ := cmd.Flags().GetStringSlice("boroughs")
			boroughs = boroughsOrDefault(boroughs, defaultCountBoroughs)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			stmt, err := query.BoroughCounts(query.TablesFromConfig(cfg), boroughs)
			if err != nil {
				return err
			}

			src, err := openSource(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeSource(src)

			table, err := src.RunQuery(cmd.Context(), stmt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Record counts by borough:")
			for _, row := range table.Records() {
				fmt.Fprintf(out, "%v: %v\n", row["borough"], row["count"])
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("boroughs", defaultCountBoroughs, "boroughs to count")
	return cmd
}

func tablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables [project.dataset]",
		Short: "List the tables of a dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			name := cfg.Dataset
			if len(args) == 1 {
				name = args[0]
			}
			dataset, err := warehouse.ParseDatasetRef(name)
			if err != nil {
				return err
			}

			src, err := openSource(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeSource(src)

			tables, err := src.ListTables(cmd.Context(), dataset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tables contained in '%s':\n", name)
			for _, t := range tables {
				fmt.Fprintf(out, "%s.%s\n", t.DatasetID, t.TableID)
			}
			return nil
		},
	}
}

func schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [project.dataset.table]",
		Short: "Print the schema of a table",
		Long:  `Print "name (TYPE)" for every field of a table, the zone lookup table by default.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			name := cfg.ZonesTable
			if len(args) == 1 {
				name = args[0]
			}
			ref, err := warehouse.ParseTableRef(name)
			if err != nil {
				return err
			}

			src, err := openSource(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeSource(src)

			fields, err := src.TableSchema(cmd.Context(), ref)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schema for %s:\n", name)
			for _, f := range fields {
				fmt.Fprintf(out, "%s (%s)\n", f.Name, f.Type)
			}
			return nil
		},
	}
}
