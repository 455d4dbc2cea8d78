package cmd

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-onboarding/app/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or revert database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Run: func(_ *cobra.Command, _ []string) {
		runMigration("up", repository.Migrate)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent migration",
	Run: func(_ *cobra.Command, _ []string) {
		runMigration("down", repository.MigrateDown)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

func runMigration(direction string, fn func(db *sql.DB, driver string) error) {
	cfg := mustLoadConfig()

	db, err := repository.OpenForMigrations(context.Background(), cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer closeDatabase(db)

	entry := logrus.WithFields(logrus.Fields{"direction": direction, "driver": cfg.Database.Driver})
	if err := fn(db, cfg.Database.Driver); err != nil {
		if errors.Is(err, repository.ErrNoChange) {
			entry.Info("No migrations to apply")
			return
		}
		entry.WithError(err).Fatal("Migration failed")
	}
	entry.Info("Migrations applied")
}
