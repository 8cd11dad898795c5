package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ragbench/ragbench/internal/config"
	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/db/sqlite"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
	Long:  `Run database migrations against the SQLite config store.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	Long:  `Apply all pending database migrations.`,
	RunE:  runMigrateUp,
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", filepath.Join("internal", "db", "migrations"), "Directory holding the migration files")
	migrateCmd.AddCommand(migrateUpCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	fmt.Println("🔄 Running database migrations...")

	sqlitePath := "ragbench.db"
	if configPath := config.GetConfigPath(); config.Exists(configPath) {
		if cfg, err := config.Load(configPath); err == nil && cfg.SQLDatabase.Provider == "sqlite" {
			sqlitePath = cfg.SQLDatabase.URI
		}
	}

	store, err := sqlite.New(&db.Config{Provider: "sqlite", URI: sqlitePath})
	if err != nil {
		return fmt.Errorf("failed to create sqlite store: %w", err)
	}

	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer store.Disconnect(ctx)

	if err := db.RunMigrations(ctx, store.DB(), migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("✅ Migrations completed successfully!")
	return nil
}
