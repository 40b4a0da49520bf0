package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/content-platform-api/internal/config"
	"github.com/content-platform-api/internal/database"
	"github.com/content-platform-api/pkg/logger"
)

// NewMigrateCmd creates the migrate subcommand
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage PostgreSQL schema migrations",
	}
	cmd.PersistentFlags().String("migrations", "", "migrations directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(db *database.DB, path string) error {
				return db.RunMigrations(path)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(db *database.DB, path string) error {
				return db.MigrateDown(path)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "to <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return oops.In("migrate").With("version", args[0]).Errorf("version must be a non-negative integer")
			}
			return withDB(cmd, func(db *database.DB, path string) error {
				return db.MigrateToVersion(path, uint(version))
			})
		},
	})

	return cmd
}

func withDB(cmd *cobra.Command, fn func(db *database.DB, path string) error) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return oops.In("migrate").Wrap(err)
	}
	if cfg.Store != config.StorePostgres {
		return oops.In("migrate").With("store", cfg.Store).Errorf("migrations require the postgres store")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return oops.In("migrate").With("host", cfg.Database.Host).Wrap(err)
	}
	defer db.Close()

	if err := fn(db, cfg.MigrationsPath); err != nil {
		return oops.In("migrate").With("migrations", cfg.MigrationsPath).Wrap(err)
	}
	cmd.Println("Migrations completed successfully")
	return nil
}
