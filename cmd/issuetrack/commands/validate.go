package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/issuetrack/pkg/report"
)

// ExitCodeValidationFailure is the exit code of a report failing validation.
const ExitCodeValidationFailure = 2

// ErrValidationFailed is returned when a report does not match the schema.
var ErrValidationFailed = errors.New("report validation failed")

// NewValidateCommand creates the validate subcommand.
func NewValidateCommand() *cobra.Command {
	var colorize, nocolor bool

	cmd := &cobra.Command{
		Use:   "validate <report.yaml|report.json>",
		Short: "Validate an analysis report against the report schema",
		Long: `Validate an analysis report against the embedded report schema.

Examples:
  issuetrack validate report.yaml
  issuetrack validate --no-color report.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setColorMode(colorize, nocolor)

			return runValidate(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func setColorMode(colorize, nocolor bool) {
	if nocolor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	} else if colorize {
		color.NoColor = false //nolint:reassign // intentional override of library global
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	violations, err := report.Validate(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()

	if len(violations) == 0 {
		color.New(color.FgGreen).Fprintf(out, "Report is valid (%s)\n", path)

		return nil
	}

	color.New(color.FgRed).Fprintf(out, "Report validation failed (%s)\n", path)
	fmt.Fprintf(out, "\nErrors:\n")

	for _, violation := range violations {
		color.New(color.FgRed).Fprintf(out, "  - %s: %s\n", violation.Field, violation.Description)
	}

	return fmt.Errorf("%w: %d violation(s)", ErrValidationFailed, len(violations))
}
