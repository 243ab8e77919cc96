package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/transom/internal/emit"
	"github.com/roach88/transom/internal/spec"
)

// EmitOptions holds flags for the emit command.
type EmitOptions struct {
	*RootOptions
	Output string
}

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "emit <item-file>",
		Short: "Emit the item's transition-map tables as C source",
		Long: `Load one item document and emit its generated data tables: condition
enums, pre-condition descriptions, the packed entry type, the entries and
map arrays, and the mixed-radix weights.

Writes to stdout unless --output names a file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runEmit(opts *EmitOptions, path string, cmd *cobra.Command) error {
	item, err := spec.LoadItem(path)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "item failed validation", Err: err}
	}

	source, err := emit.Source(item.Model, item.Table)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "emission failed", Err: err}
	}

	if opts.Output == "" {
		_, err = cmd.OutOrStdout().Write(source)
		return err
	}
	if err := os.WriteFile(opts.Output, source, 0o644); err != nil {
		return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("failed to write %s", opts.Output), Err: err}
	}
	return nil
}
