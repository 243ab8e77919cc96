package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/transom/internal/spec"
)

// ValidateResult summarizes validation of an item directory.
type ValidateResult struct {
	Items  int      `json:"items"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <items-dir>",
		Short: "Validate item documents without synthesizing",
		Long: `Validate specification item documents against the schema and the
transition-map invariants: condition cardinalities, order-map completeness,
entry reachability, and NA-exempt consistency.

A failing item is reported and does not block validation of sibling items.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	items, errs := spec.LoadDir(dir)
	formatter.VerboseLog("loaded %d item(s) from %s, %d failed", len(items), dir, len(errs))

	if len(errs) > 0 {
		if err := formatter.Failure(errs); err != nil {
			return err
		}
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d item(s) failed validation", len(errs))}
	}
	if len(items) == 0 {
		return &ExitError{Code: ExitCommandError, Message: "no item documents found in " + dir}
	}
	return formatter.Success(fmt.Sprintf("%d item(s) valid", len(items)))
}
