package cli

import (
	"time"

	"github.com/spf13/cobra"

	"canteen/internal/app/api"
	"canteen/internal/auth"
	"canteen/internal/common/logger"
	"canteen/internal/connections/rabbitmq"
	"canteen/internal/events"
	"canteen/internal/repository"
)

const publishTimeout = 5 * time.Second

func NewAPICommand(rootOpts *RootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := rootOpts.cfg
			log := logger.New("api")

			db, err := connect(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := repository.Migrate(ctx, db); err != nil {
					return err
				}
			}

			deps := api.Deps{
				Config: *cfg,
				Repo: repository.New(db, repository.Options{
					Timeout:     cfg.Store.Timeout,
					ReadRetries: cfg.Store.ReadRetries,
				}),
				Hasher: auth.NewHasher(cfg.Auth.BcryptCost),
				Tokens: auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
				DB:     db,
				Log:    log,
			}

			if cfg.RabbitMQ.Enabled {
				client, err := rabbitmq.Dial(brokerConfig(cfg.RabbitMQ))
				if err != nil {
					return err
				}
				defer client.Close()
				if err := client.DeclareTopology(); err != nil {
					return err
				}
				deps.Events = events.NewAMQPPublisher(client, publishTimeout)
				deps.Broker = client
			} else {
				log.Warn("broker_disabled", map[string]any{"publisher": "log"})
				deps.Events = events.NewLogPublisher(log)
			}

			return api.Run(ctx, deps)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before serving")
	return cmd
}
