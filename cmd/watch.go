package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"nyctaxi/mq/mq"
)

func watchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print dataset events as they are published",
		Long: `Subscribe to dataset events from RabbitMQ or GCP Pub/Sub and print each one as
a JSON line until interrupted. An empty --borough receives every borough.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			borough, _ := cmd.Flags().GetString("borough")
			modeName, _ := cmd.Flags().GetString("mq")

			mode, err := mq.ParseMode(modeName)
			if err != nil {
				return err
			}
			if mode == mq.ModeNone || mode == mq.ModeGoChan {
				return fmt.Errorf("watch needs a broker, got mq mode %q", mode)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			queue, err := openQueue(cmd.Context(), mode, cfg)
			if err != nil {
				return err
			}
			defer queue.Close()

			out := make(chan []byte)
			err = mq.SubscribeProcessor(cmd.Context(), borough, queue, func(e mq.DatasetEvent) ([]byte, bool, error) {
				body, err := json.Marshal(e)
				return body, false, err
			}, out)
			if err != nil {
				return err
			}

			log.Printf("Watching dataset events (%s, borough %q). Press Ctrl+C to stop.", mode, borough)
			for line := range out {
				fmt.Fprintln(cmd.OutOrStdout(), string(line))
			}
			return nil
		},
	}

	cmd.Flags().String("borough", "", "only print events of this borough")
	cmd.Flags().String("mq", string(mq.ModeRabbitMQ), "message queue mode (rabbitmq, gcp_pub_sub)")

	return cmd
}
