package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/boardwalk/internal/config"
	"github.com/aretw0/boardwalk/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "boardwalk",
	Short: "Boardwalk is a positional board engine",
	Long: `Boardwalk decodes board positions written in a compact rank notation, resolves
the token moves needed to reach a new position and animates them, including
squeeze-turn-enlarge board rotation.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default boardwalk.yaml if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Override the log format: text or json")
}

// app is the configuration and logger shared by the commands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func setup(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: logging.NewWithFormat(cmd.ErrOrStderr(), level, cfg.Log.Format),
	}, nil
}
