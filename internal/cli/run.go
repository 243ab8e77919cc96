package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/transom/internal/spec"
	"github.com/roach88/transom/internal/synth"
	"github.com/roach88/transom/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// Tokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens trace.TokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <item-file>",
		Short: "Run an item's synthesis plan, recording the step stream",
		Long: `Load one item document, enumerate its combination space in declared
nesting order, and record every prepare/action/check dispatch to a SQLite
event log for later inspection.

Example:
  transom run --db ./transom.db ./items/red-green.yml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItem(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runItem(opts *RunOptions, path string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))

	item, err := spec.LoadItem(path)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "item failed validation", Err: err}
	}

	s, err := synth.New(item.Model, item.Table)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "synthesizer construction failed", Err: err}
	}

	store, err := trace.Open(opts.Database)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "failed to open database", Err: err}
	}
	defer store.Close()

	tokens := opts.Tokens
	if tokens == nil {
		tokens = trace.UUIDv7Generator{}
	}
	token := tokens.Generate()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plan := s.PlanSize()
	if err := store.BeginRun(ctx, token, item.Model.Name, plan); err != nil {
		return &ExitError{Code: ExitCommandError, Message: "failed to begin run", Err: err}
	}
	logger.Info("run started", "item", item.Model.Name, "run", token, "plan", plan)

	recorder := trace.NewRecorder(ctx, store, item.Model, token, trace.WithScope(s.Scope))
	if err := s.Run(ctx, recorder); err != nil {
		logger.Error("run failed", "run", token, "steps", s.Steps(), "err", err)
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("run %s failed after %d step(s)", token, s.Steps()), Err: err}
	}
	logger.Info("run finished", "run", token, "steps", s.Steps())

	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	return formatter.Success(fmt.Sprintf("run %s: %d step(s) recorded", token, s.Steps()))
}
