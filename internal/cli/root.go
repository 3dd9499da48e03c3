package cli

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"canteen/internal/common/logger"
	"canteen/internal/config"
	"canteen/internal/connections/database"
	"canteen/internal/connections/rabbitmq"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string

	cfg *config.Config
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "canteen",
		Short: "Canteen food-ordering backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			logger.SetLevel(cfg.Log.Level)
			opts.cfg = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config (optional, CANTEEN_* env overrides)")

	cmd.AddCommand(NewAPICommand(opts))
	cmd.AddCommand(NewNotifierCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))

	return cmd
}

func connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*sqlx.DB, error) {
	db, err := database.ConnectDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("db_connected", map[string]any{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})
	return db, nil
}

func brokerConfig(c config.RabbitMQConfig) rabbitmq.Config {
	return rabbitmq.Config{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		VHost:    c.VHost,
	}
}
