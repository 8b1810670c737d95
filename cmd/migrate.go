package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/hardware-marketplace/db"
	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const migrationsTable = "schema_migrations"

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "run the embedded SQL migrations under db/migrations",
	}
	migrateRollback bool
	migrateStatus   bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration")
	migrateCmd.Flags().BoolVarP(&migrateStatus, "status", "s", false, "print migration status and exit")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	conn, err := goose.OpenDBWithDriver("pgx", cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName(migrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose: %w", err)
	}

	command := "up"
	switch {
	case migrateStatus:
		command = "status"
	case migrateRollback:
		command = "down"
	}

	logger.L().Info("running migrations", "command", command)
	if err := goose.RunContext(ctx, command, conn, db.MigrationsDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
