// Package commands implements the issuetrack subcommands.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/issuetrack/pkg/config"
)

const (
	configFlag  = "config"
	verboseFlag = "verbose"
	quietFlag   = "quiet"
)

// AddPersistentFlags registers the flags shared by every subcommand.
func AddPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().String(configFlag, "", "config file (default .issuetrack.yaml in . or $HOME)")
	root.PersistentFlags().BoolP(verboseFlag, "v", false, "verbose output")
	root.PersistentFlags().BoolP(quietFlag, "q", false, "suppress non-error logs")
}

// loadConfig loads the configuration named by --config and applies the
// verbosity flags to the log level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(configFlag)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // config errors are descriptive.
	}

	if verbose, _ := cmd.Flags().GetBool(verboseFlag); verbose {
		cfg.Logging.Level = slog.LevelDebug.String()
	}

	if quiet, _ := cmd.Flags().GetBool(quietFlag); quiet {
		cfg.Logging.Level = slog.LevelError.String()
	}

	return cfg, nil
}
