package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/negative-records-api/pkg/config"
	"github.com/noah-isme/negative-records-api/pkg/database"
	"github.com/noah-isme/negative-records-api/pkg/logger"
	"github.com/noah-isme/negative-records-api/pkg/migration"
)

func migrateCommand(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cfg(), "up", func(db *sql.DB) error {
				return migration.Up(db)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			return withDatabase(cfg(), "down", func(db *sql.DB) error {
				return migration.Down(db, steps)
			})
		},
	})

	return cmd
}

func withDatabase(cfg *config.Config, direction string, fn func(db *sql.DB) error) error {
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := fn(db.DB); err != nil {
		return err
	}
	logr.Info("migrations applied", zap.String("direction", direction))
	return nil
}
