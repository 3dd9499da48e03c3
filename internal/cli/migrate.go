package cli

import (
	"github.com/spf13/cobra"

	"canteen/internal/common/logger"
	"canteen/internal/repository"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("migrate")
			db, err := connect(cmd.Context(), rootOpts.cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("schema_applied", nil)
			return nil
		},
	}
}
