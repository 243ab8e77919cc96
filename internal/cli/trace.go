package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/transom/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Run      string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `List recorded runs, or print the ordered step stream of one run when
--run names a token. Events are ordered by logical seq; the scope column
shows the effective pre-condition states of the enclosing combination.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Run, "run", "", "run token to print")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	store, err := trace.Open(opts.Database)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "failed to open database", Err: err}
	}
	defer store.Close()

	ctx := cmd.Context()
	if opts.Run == "" {
		runs, err := store.ListRuns(ctx)
		if err != nil {
			return &ExitError{Code: ExitCommandError, Message: "failed to list runs", Err: err}
		}
		if opts.Format == "json" {
			return formatter.Success(runs)
		}
		var b strings.Builder
		for _, r := range runs {
			fmt.Fprintf(&b, "%s  item=%s  plan=%d\n", r.Token, r.Item, r.Plan)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
		return err
	}

	run, err := store.ReadRun(ctx, opts.Run)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "run not found", Err: err}
	}
	events, err := store.ReadEvents(ctx, opts.Run)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "failed to read events", Err: err}
	}

	if opts.Format == "json" {
		return formatter.Success(struct {
			Run    *trace.Run    `json:"run"`
			Events []trace.Event `json:"events"`
		}{run, events})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run %s  item=%s  plan=%d\n", run.Token, run.Item, run.Plan)
	for _, e := range events {
		switch e.Kind {
		case trace.KindAction:
			fmt.Fprintf(&b, "%6d  action             %s\n", e.Seq, e.Scope)
		default:
			fmt.Fprintf(&b, "%6d  %-7s %2d %-8s %s\n", e.Seq, e.Kind, e.Dimension, e.State, e.Scope)
		}
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}
