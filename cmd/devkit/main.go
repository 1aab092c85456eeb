package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zph/devkit/pkg/config"
	"github.com/zph/devkit/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "devkit",
	Short: "Developer workstation toolkit",
	Long: `Devkit is a toolkit for managing locally built developer tools.
It installs binaries atomically with automatic rollback, bumps semantic
version tags in git repositories, and manages launchd background agents.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadDefault()
		if err != nil {
			logger.Warn("failed to load config, using defaults: %v", err)
			return
		}
		logger.SetLevel(cfg.LogLevel)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
