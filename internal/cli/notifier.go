package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"canteen/internal/app/notifier"
	"canteen/internal/common/logger"
)

func NewNotifierCommand(rootOpts *RootOptions) *cobra.Command {
	var prefetch int

	cmd := &cobra.Command{
		Use:   "notifier",
		Short: "Deliver customer notices from the notifications queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.cfg
			if !cfg.RabbitMQ.Enabled {
				return errors.New("notifier needs rabbitmq.enabled")
			}
			return notifier.Run(cmd.Context(), notifier.Config{
				Broker:   brokerConfig(cfg.RabbitMQ),
				Prefetch: prefetch,
			}, logger.New("notifier"))
		},
	}

	cmd.Flags().IntVar(&prefetch, "prefetch", 10, "unacked deliveries held at once")
	return cmd
}
