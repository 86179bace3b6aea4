package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"nyctaxi/db/pg"
	"nyctaxi/export"
	"nyctaxi/mq/mq"
	"nyctaxi/query"
	"nyctaxi/warehouse/warehouse"
)

const (
	sinkCSV      = "csv"
	sinkJSON     = "json"
	sinkPostgres = "postgres"
)

var defaultDatasetBoroughs = []string{"Manhattan", "Queens", "Brooklyn"}

func generateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Export one dataset per borough",
		Long: `Query the newest trips of each borough and write one dataset per borough,
e.g. public/manhattan_trips.csv, for the dashboard.`,
		Example: `nyctaxi generate --boroughs Manhattan,Queens --limit 3000 --sink csv --output-dir public`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir, _ := cmd.Flags().GetString("output-dir")
			limit, _ := cmd.Flags().GetInt("limit")
			boroughs, _ := cmd.Flags().GetStringSlice("boroughs")
			boroughs = boroughsOrDefault(boroughs, defaultDatasetBoroughs)
			sinkName, _ := cmd.Flags().GetString("sink")
			notifyMode, _ := cmd.Flags().GetString("notify")

			mode, err := mq.ParseMode(notifyMode)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tables := query.TablesFromConfig(cfg)

			// build every statement first so bad input fails before any query runs
			stmts := make(map[string]warehouse.Statement, len(boroughs))
			for _, b := range boroughs {
				stmt, err := query.BoroughExport(tables, b, limit)
				if err != nil {
					return fmt.Errorf("%s: %w", b, err)
				}
				stmts[b] = stmt
			}

			sink, closeSink, err := openSink(sinkName, outputDir)
			if err != nil {
				return err
			}
			defer closeSink()

			src, err := openSource(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeSource(src)

			n, err := newNotifier(cmd.Context(), mode, cfg)
			if err != nil {
				return err
			}
			defer n.Close()

			if err := runExports(cmd.Context(), src, sink, boroughs, stmts, n, cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All datasets generated successfully.")
			return nil
		},
	}

	cmd.Flags().String("output-dir", "public", "directory for csv and json datasets")
	cmd.Flags().Int("limit", query.DefaultExportLimit, "trips per borough")
	cmd.Flags().StringSlice("boroughs", defaultDatasetBoroughs, "boroughs to export")
	cmd.Flags().String("sink", sinkCSV, "dataset sink (csv, json, postgres)")
	cmd.Flags().String("notify", string(mq.ModeNone), "publish dataset events (none, go_chan, rabbitmq, gcp_pub_sub)")

	return cmd
}

// runExports runs the statement of every borough in order and writes each result to sink.
func runExports(ctx context.Context, runner warehouse.QueryRunner, sink export.Sink, boroughs []string,
	stmts map[string]warehouse.Statement, n *notifier, out io.Writer) error {
	for _, b := range boroughs {
		log.Printf("Fetching data for %s...", b)
		table, err := runner.RunQuery(ctx, stmts[b])
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", b, err)
		}
		res, err := sink.Write(ctx, b, table)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %d records to %s\n", res.RecordCount, res.Path)
		n.Notify(b, res)
	}
	return nil
}

// openSink returns the sink named name and a func releasing it.
func openSink(name, outputDir string) (export.Sink, func(), error) {
	switch strings.ToLower(name) {
	case sinkCSV:
		return export.CSVSink{Dir: outputDir}, func() {}, nil
	case sinkJSON:
		return export.JSONSink{Dir: outputDir}, func() {}, nil
	case sinkPostgres:
		db, err := pg.InitPostgresGORM(pg.CreateDSN())
		if err != nil {
			return nil, nil, err
		}
		return pg.NewTripStore(db), func() { pg.CloseGORM(db) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q (want %s, %s or %s)", name, sinkCSV, sinkJSON, sinkPostgres)
	}
}

// boroughsOrDefault falls back to def when the flag was left empty.
func boroughsOrDefault(boroughs, def []string) []string {
	out := make([]string, 0, len(boroughs))
	for _, b := range boroughs {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
