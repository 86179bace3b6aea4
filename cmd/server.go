package cmd

import (
	"github.com/spf13/cobra"

	"nyctaxi/query"
	"nyctaxi/web"
)

func serverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the HTTP service. GET /api/fetch_data answers with the newest trips of
each configured borough partition (TAXI_PARTITIONS) as a JSON array.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			isDev, _ := cmd.Flags().GetBool("dev")
			port, _ := cmd.Flags().GetString("port")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Port
			}

			tables := query.TablesFromConfig(cfg)
			sample, err := query.PartitionSample(tables, cfg.Partitions)
			if err != nil {
				return err
			}
			metricsSample, err := query.MetricsSample(tables, cfg.Partitions)
			if err != nil {
				return err
			}

			src, err := openSource(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeSource(src)

			return web.Serve(web.ServiceConfig{
				IsDev:         isDev,
				Port:          port,
				Runner:        src,
				Sample:        sample,
				MetricsSample: metricsSample,
			})
		},
	}

	cmd.Flags().Bool("dev", false, "Run in development mode")
	cmd.Flags().String("port", "", "Port to run the web server on (default $PORT or 8080)")

	return cmd
}
