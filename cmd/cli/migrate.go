package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iho/banky/internal/infrastructure/config"
	"github.com/iho/banky/internal/infrastructure/logger"
	"github.com/iho/banky/internal/infrastructure/postgres"
)

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if migrationsPath == "" {
				migrationsPath = cfg.MigrationsPath
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				log := logger.New(logger.Config{Format: "console", Output: cmd.ErrOrStderr()})
				return postgres.RunMigrations(databaseURL, migrationsPath, log)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				log := logger.New(logger.Config{Format: "console", Output: cmd.ErrOrStderr()})
				return postgres.RunMigrationsDown(databaseURL, migrationsPath, log)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := postgres.MigrationVersion(databaseURL, migrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)
	return cmd
}
