package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"nyctaxi/config"
	"nyctaxi/mq/gcppubsub"
	"nyctaxi/mq/goch"
	"nyctaxi/mq/mq"
	"nyctaxi/mq/rabbit"
	"nyctaxi/warehouse/bq"
	"nyctaxi/warehouse/mem"
	"nyctaxi/warehouse/warehouse"
)

const (
	sourceBigQuery  = "bigquery"
	sourceSynthetic = "synthetic"
)

// openSource connects to the warehouse selected by the --source flag.
func openSource(cmd *cobra.Command, cfg config.Config) (warehouse.Source, error) {
	kind, _ := cmd.Flags().GetString("source")
	switch kind {
	case sourceBigQuery:
		client, err := bq.NewClient(cmd.Context(), cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		return client, nil
	case sourceSynthetic:
		seed, _ := cmd.Flags().GetInt64("seed")
		log.Printf("Using synthetic trips (seed %d)", seed)
		src, err := mem.NewSyntheticSource(seed, cfg.TripsTable, cfg.ZonesTable)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source %q (want %s or %s)", kind, sourceBigQuery, sourceSynthetic)
	}
}

// sourceLabel names the warehouse selected by the --source flag for log lines.
func sourceLabel(cmd *cobra.Command) string {
	kind, _ := cmd.Flags().GetString("source")
	if kind == sourceSynthetic {
		return "synthetic trips"
	}
	return "BigQuery"
}

func closeSource(src warehouse.Source) {
	if err := src.Close(); err != nil {
		log.Printf("Error closing source: %v", err)
	}
}

// openQueue returns the dataset queue for mode, or nil for mq.ModeNone.
func openQueue(ctx context.Context, mode mq.Mode, cfg config.Config) (mq.DatasetQueue, error) {
	switch mode {
	case mq.ModeNone:
		return nil, nil
	case mq.ModeGoChan:
		return goch.NewDatasetQueue(16), nil
	case mq.ModeRabbitMQ:
		conn, err := rabbit.NewRabbitConnection(rabbit.CreateAmqpURL())
		if err != nil {
			return nil, err
		}
		q, err := rabbit.NewDatasetQueue(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return q, nil
	case mq.ModeGCPPubSub:
		q, err := gcppubsub.NewDatasetQueue(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unknown notify mode %q", mode)
	}
}

// loadConfig reads the environment and applies the flags every command shares.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if f := cmd.Flags().Lookup("project"); f != nil && f.Changed {
		cfg.ProjectID = f.Value.String()
	}
	return cfg, nil
}
