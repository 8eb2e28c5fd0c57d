package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ehrlich-b/drvsh/internal/config"
	"github.com/ehrlich-b/drvsh/internal/daemon"
	"github.com/ehrlich-b/drvsh/internal/logger"
)

const version = "0.1.0"

func main() {
	var suffixFlag string
	var logLevelFlag string
	var logFileFlag string

	root := &cobra.Command{
		Use:   "drvsh",
		Short: "drvsh — operator shell for a fleet of local driver processes",
		Long:  "Discovers Unix-domain-socket driver endpoints in a directory, fetches each driver's command catalog, and forwards line-oriented commands to them.",
	}

	runCmd := &cobra.Command{
		Use:   "run <base-dir>",
		Short: "Start the shell against a base directory of driver endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.BaseDir = args[0]
			if suffixFlag != "" {
				cfg.Suffix = suffixFlag
			}
			if logLevelFlag != "" {
				cfg.LogLevel = logLevelFlag
			}
			if logFileFlag != "" {
				cfg.LogFile = logFileFlag
			}

			if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			return daemon.Run(cfg)
		},
	}
	runCmd.Flags().StringVar(&suffixFlag, "suffix", "", "endpoint filename suffix (default from config, else \"drv\")")
	runCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "debug|info|warn|error")
	runCmd.Flags().StringVar(&logFileFlag, "log-file", "", "path to also write logs to")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the drvsh version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}

	root.AddCommand(runCmd, versionCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
