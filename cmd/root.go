// Package cmd provides the root command and CLI setup for debugrun.
package cmd

import (
	"log/slog"
	"os"

	"github.com/mouse-blink/debugrun/internal/config"
	"github.com/mouse-blink/debugrun/internal/logging"
	"github.com/spf13/cobra"
)

// cfg is loaded before any subcommand runs.
var cfg = config.Default()

var noColorFlag bool
var configFlag string
var verboseFlag bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debugrun",
		Short: "Debugger-friendly test harness",
		Long: `Debugrun is a small test harness built for debugging sessions. Tests are
plain functions and suite methods registered on a module; a failure is a
panic, reported with a clean traceback and the stdout it captured.

Settings come from .debugrun.yml in the working directory, layered over
~/.config/debugrun/config.yml.`,
		// SilenceUsage is set to true to prevent printing usage message on
		// errors handled by us (e.g. failing demo runs, bad config files)
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logging.InitForCLI(verboseFlag)

			var err error
			if configFlag != "" {
				cfg, err = config.LoadFile(configFlag)
			} else {
				cfg, err = config.Load()
			}

			if err != nil {
				return err
			}

			if noColorFlag {
				cfg.Color = "never"
			}

			slog.Debug("configuration loaded",
				"prefix", cfg.Prefix,
				"color", cfg.Color,
				"fail_fast", cfg.FailFast,
			)

			return nil
		},
	}
	cmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "config file (default is .debugrun.yml, then ~/.config/debugrun/config.yml)")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging on stderr")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
