// Package main provides the entry point for the issuetrack CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/issuetrack/cmd/issuetrack/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "issuetrack",
		Short: "issuetrack - reconcile analysis issues across runs",
		Long: `issuetrack matches the issues raised by an analysis against the issues
known from the previous analysis, so they keep their identity, status and
creation date.

Commands:
  track     Track the issues of an analysis report
  validate  Validate an analysis report against its schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commands.AddPersistentFlags(rootCmd)

	rootCmd.AddCommand(commands.NewTrackCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err == nil {
		return
	}

	if errors.Is(err, commands.ErrValidationFailed) {
		os.Exit(commands.ExitCodeValidationFailure)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
