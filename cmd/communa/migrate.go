package main

import (
	"errors"
	"os"

	"github.com/communa/backend/adapters/postgres"
	"github.com/communa/backend/config"
	"github.com/communa/backend/internal/logging"
	"github.com/spf13/cobra"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DatabaseDSN == "" {
				return errors.New("database dsn is required")
			}

			log := logging.NewJSON(os.Stdout, cfg.LogLevel)
			db, err := postgres.Open(cmd.Context(), cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.RunMigrations(cmd.Context(), db); err != nil {
				return err
			}
			log.Info(cmd.Context(), "migrations applied")
			return nil
		},
	}
}
