package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/transom/internal/spec"
	"github.com/roach88/transom/internal/synth"
)

// PlanResult reports the synthesis plan of one item.
type PlanResult struct {
	Item           string `json:"item"`
	GenerationSize int    `json:"generation_size"`
	Entries        int    `json:"entries"`
	PlanSize       int    `json:"plan_size"`
}

func (r PlanResult) String() string {
	return fmt.Sprintf("%s: plan %d (generation space %d, entries %d)",
		r.Item, r.PlanSize, r.GenerationSize, r.Entries)
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <item-file>",
		Short: "Report the plan size of an item",
		Long: `Load one item document and report its synthesis plan: the size of the
generation-order space, the count of collapsed table entries, and the plan
size (combinations surviving skip entries and skip-ahead pruning).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, args[0], cmd)
		},
	}
}

func runPlan(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	item, err := spec.LoadItem(path)
	if err != nil {
		if ferr := formatter.Failure([]error{err}); ferr != nil {
			return ferr
		}
		return &ExitError{Code: ExitFailure, Message: "item failed validation", Err: err}
	}

	s, err := synth.New(item.Model, item.Table)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "synthesizer construction failed", Err: err}
	}

	return formatter.Success(PlanResult{
		Item:           item.Model.Name,
		GenerationSize: item.Table.GenerationSize(),
		Entries:        item.Table.Len(),
		PlanSize:       s.PlanSize(),
	})
}
