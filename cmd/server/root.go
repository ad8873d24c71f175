package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hire-match/internal/config"
	"hire-match/internal/logger"
)

const appName = "hire-match"

var (
	// Used for flags.
	cfgFile   string
	debugFlag bool
	jsonFlag  bool

	rootCmd = &cobra.Command{
		Use:          appName,
		Short:        "hire-match matches professionals to positions and runs the application lifecycle",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false, "json format for logging")
}

// loadConfig reads configuration. Flags override the log section.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	if debugFlag {
		cfg.Log.Debug = true
	}
	if jsonFlag {
		cfg.Log.JSON = true
	}
	return cfg, nil
}

// loadRuntime is loadConfig plus the logger built from it.
func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}

	l, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, l, nil
}
