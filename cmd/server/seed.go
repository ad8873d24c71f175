package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hire-match/internal/app"
	"hire-match/internal/seeder"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo businesses, professionals and positions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return seed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	c, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	target := seeder.Target{Profiles: c.Profile, Catalog: c.Catalog, Logger: logger}
	if err := (seeder.Runner{Seeders: seeder.Defaults()}).Run(ctx, target); err != nil {
		logger.Error("seed failed", zap.Error(err))
		return err
	}
	return nil
}
