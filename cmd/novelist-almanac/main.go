// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the novelist-almanac CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/novelist-almanac/internal/logging"
	"github.com/pdiddy/novelist-almanac/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	// logger is replaced in PersistentPreRunE once --log-level is known.
	logger = zap.NewNop()
)

// rootCmd is the base command for the novelist-almanac CLI.
var rootCmd = &cobra.Command{
	Use:   "novelist-almanac",
	Short: "Find novelists born on a given day using Japanese Wikipedia",
	Long: `novelist-almanac reads the births section of a Japanese Wikipedia date
page (for example 12月8日), keeps the people described as novelists, and
shows them as cards with a birth date, role, thumbnail, and links.

Results can be saved to a local SQLite library and browsed or exported
later without going back to Wikipedia.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log_level"), os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Info("using config file", zap.String("path", f))
		}

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./novelist-almanac.yaml or ~/.config/novelist-almanac/novelist-almanac.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "diagnostic log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("library-dir", "library", "directory holding the SQLite library and exports")

	bindFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("library.dir", rootCmd.PersistentFlags().Lookup("library-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("novelist-almanac")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "novelist-almanac"))
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// A missing config file is normal; defaults and flags still apply.
	_ = viper.ReadInConfig()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
