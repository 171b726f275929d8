package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/congo-pay/quorum_wallet/internal/config"
	"github.com/congo-pay/quorum_wallet/internal/infra"
	"github.com/congo-pay/quorum_wallet/internal/logging"
)

func migrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL must be set to migrate")
			}
			logger := logging.Component(logging.New(cfg.LogLevel, cfg.AppName), "migrate")
			return infra.Migrate(cfg.DatabaseURL, down, logger)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll every migration back")
	return cmd
}
