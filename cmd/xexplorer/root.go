package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexballas/xexplorer/internal/config"
	"github.com/alexballas/xexplorer/internal/logging"
)

var (
	configPath string
	logLevel   string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "xexplorer",
	Short:        "Virtualized file explorer grid",
	SilenceUsage: true,
	Long: `xexplorer lists directories as a virtualized, paginated grid with
identity based selection. It can also print grid geometry and resolve
normalized page payloads without opening a window.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

func loadConfig(cmd *cobra.Command) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return err
		}
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := logging.Init(cfg.Log); err != nil {
		return fmt.Errorf("cannot init logging: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
