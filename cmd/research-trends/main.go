// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-trends CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-trends/internal/logging"
	"github.com/pdiddy/research-trends/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials read from the secrets directory.
	loadedSecrets secrets.Set

	// logger is built from the log.* config before any subcommand runs.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "research-trends",
	Short: "Theme relevance and trend scoring for research papers",
	Long: `research-trends scores papers against a strategic theme taxonomy, maps
topic-model topics onto themes, and measures how each theme and topic is
growing over time.

Stages are subcommands: collect, relevance, map, trends, and emerging.
run chains relevance through emerging in one pass.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if logger, err = logging.New(cfg.Log); err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		if loadedSecrets, err = secrets.Load(dir, logger); err != nil {
			return err
		}
		if names := loadedSecrets.Names(); len(names) > 0 {
			logger.Debug("loaded secrets", zap.Strings("names", names))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-trends.yaml or ~/.config/research-trends/research-trends.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of credential files")
	rootCmd.PersistentFlags().String("taxonomy", "", "theme taxonomy YAML (default: built-in taxonomy)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("taxonomy_path", rootCmd.PersistentFlags().Lookup("taxonomy"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-trends")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-trends"))
		}
	}

	setDefaults(viper.GetViper())
	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
