package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	notes "github.com/wynotes/go-notes"
	"github.com/wynotes/go-notes/internal/di"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all up migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := root.loadConfig()
				if err != nil {
					return err
				}
				if isSQLite(cfg.Storage) {
					db, err := di.OpenDB(cfg.Storage)
					if err != nil {
						return err
					}
					defer db.Close()
					return di.EnsureSchema(cmd.Context(), db)
				}
				return runMigrations(cfg.Storage, func(m *migrate.Migrate) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := root.loadConfig()
				if err != nil {
					return err
				}
				if isSQLite(cfg.Storage) {
					return errors.New("migrate down is only supported for postgres")
				}
				return runMigrations(cfg.Storage, func(m *migrate.Migrate) error { return m.Steps(-1) })
			},
		},
	)
	return cmd
}

func isSQLite(cfg notes.StorageConfig) bool {
	return strings.EqualFold(strings.TrimSpace(cfg.Driver), "sqlite")
}

func runMigrations(cfg notes.StorageConfig, apply func(*migrate.Migrate) error) error {
	source, err := iofs.New(notes.GetMigrationsFS(), ".")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, cfg.DSN)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := apply(migrator); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migrate failed: %w", err)
	}
	return nil
}
