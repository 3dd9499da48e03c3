package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"canteen/internal/auth"
	"canteen/internal/common/logger"
	"canteen/internal/domain"
	"canteen/internal/events"
	"canteen/internal/microservices/auth/domain/dto"
	authservice "canteen/internal/microservices/auth/service"
	"canteen/internal/repository"
)

// NewCreateAdminCommand bootstraps the first admin, who can then promote others.
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	var req dto.RegisterRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := rootOpts.cfg
			log := logger.New("create-admin")

			db, err := connect(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.New(db, repository.Options{Timeout: cfg.Store.Timeout, ReadRetries: cfg.Store.ReadRetries})
			svc := authservice.NewAuthService(repo.UserRepo,
				auth.NewHasher(cfg.Auth.BcryptCost),
				auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
				events.NewLogPublisher(log), log, cfg.Auth.ResetCodeTTL)

			u, err := svc.CreateWithRole(ctx, req, domain.RoleAdmin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %q created with id %d\n", u.Username, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "admin username (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password (required)")
	for _, f := range []string{"username", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
