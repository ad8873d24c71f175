package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hire-match/internal/database/migration"
	"hire-match/internal/database/postgres"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return migrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "read migrations from this directory instead of the embedded set")
}

func migrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer func() { _ = pool.Close() }()

	if err := (migration.Runner{Dir: migrationsDir}).Run(ctx, pool.SQLDB()); err != nil {
		logger.Error("migration failed", zap.Error(err))
		return err
	}
	logger.Info("migrations applied", zap.String("database", cfg.Database.DBName))
	return nil
}
