package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/auramodel/internal/guard"
	"github.com/roach88/auramodel/internal/ir"
)

// GuardsOptions holds flags for the guards command.
type GuardsOptions struct {
	*RootOptions
	Steps   []string
	Grant   string
	Budget  uint64
	Enforce bool
}

// GuardsResult is the outcome of a guards run.
type GuardsResult struct {
	TotalCost uint64 `json:"total_cost"`
	Steps     int    `json:"steps"`
	Requires  string `json:"requires"`
	Enforced  bool   `json:"enforced"`
}

// NewGuardsCommand creates the guards command.
func NewGuardsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GuardsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "guards",
		Short: "Charge an effect chain",
		Long: `Sum the flow costs of an effect chain.

By default every step is charged regardless of its capability
requirement. With --enforce (implied by --grant or --budget) the chain
is walked under the configured grant and budget and stops at the first
step that needs more than the grant or would exceed the budget.

Examples:
  auramodel guards --step 3 --step 5:write
  auramodel guards --step 3:read --step 5:write --grant read
  auramodel guards --step 3 --step 5 --budget 7 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuards(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Steps, "step", nil, "step as cost or cost:cap (repeatable)")
	cmd.Flags().StringVar(&opts.Grant, "grant", "write", "granted capability: none|read|write (overrides config)")
	cmd.Flags().Uint64Var(&opts.Budget, "budget", 0, "cost budget, 0 for unlimited (overrides config)")
	cmd.Flags().BoolVar(&opts.Enforce, "enforce", false, "apply grant and budget")

	return cmd
}

func runGuards(opts *GuardsOptions, cmd *cobra.Command) error {
	out := opts.Formatter(cmd)

	snapshot := ir.Snapshot{Steps: make([]ir.Step, 0, len(opts.Steps))}
	for _, s := range opts.Steps {
		step, err := parseStep(s)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid step", err)
		}
		snapshot.Steps = append(snapshot.Steps, step)
	}

	result := GuardsResult{
		Steps:    len(snapshot.Steps),
		Requires: guard.MaxRequirement(snapshot).String(),
	}

	enforce := opts.Enforce || cmd.Flags().Changed("grant") || cmd.Flags().Changed("budget")
	if !enforce {
		result.TotalCost = guard.EvaluateGuards(snapshot).TotalCost
		return emitGuards(out, result)
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("grant") {
		cfg.Guard.Grant = opts.Grant
	}
	if cmd.Flags().Changed("budget") {
		cfg.Guard.Budget = opts.Budget
	}
	ev, err := cfg.Evaluator()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid evaluator", err)
	}

	cmdOut, err := ev.Evaluate(snapshot)
	if err != nil {
		var ge *guard.GuardError
		if errors.As(err, &ge) {
			return out.Fail(ExitFailure, string(ge.Code), ge.Message, map[string]any{
				"step":    ge.StepIndex,
				"charged": ge.Charged,
			})
		}
		return WrapExitError(ExitCommandError, "evaluate failed", err)
	}

	result.TotalCost = cmdOut.TotalCost
	result.Enforced = true
	return emitGuards(out, result)
}

func emitGuards(out *OutputFormatter, result GuardsResult) error {
	return out.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "total cost: %d (%d steps, requires %s)\n", result.TotalCost, result.Steps, result.Requires)
	})
}
