package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/auramodel/internal/timesystem"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	IgnorePhysical bool
}

// CompareResult is the outcome of a compare run.
type CompareResult struct {
	Left           string `json:"left"`
	Right          string `json:"right"`
	IgnorePhysical bool   `json:"ignore_physical"`
	Ordering       string `json:"ordering"`
	Ordinal        int    `json:"ordinal"`
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare <logical:order> <logical:order>",
		Short: "Order two hybrid timestamps",
		Long: `Compare two timestamps and print lt, eq or gt.

Timestamps are ordered by logical counter, then by order clock. With
--ignore-physical only the logical counter is compared.

Examples:
  auramodel compare 1:5 1:9
  auramodel compare 1:5 1:9 --ignore-physical`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.IgnorePhysical, "ignore-physical", false, "compare logical counters only (overrides config)")

	return cmd
}

func runCompare(opts *CompareOptions, leftArg, rightArg string, cmd *cobra.Command) error {
	left, err := parseTimeStamp(leftArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid left timestamp", err)
	}
	right, err := parseTimeStamp(rightArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid right timestamp", err)
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	policy := cfg.Policy()
	if cmd.Flags().Changed("ignore-physical") {
		policy.IgnorePhysical = opts.IgnorePhysical
	}

	ord := timesystem.Compare(policy, left, right)
	result := CompareResult{
		Left:           left.String(),
		Right:          right.String(),
		IgnorePhysical: policy.IgnorePhysical,
		Ordering:       ord.String(),
		Ordinal:        int(ord),
	}
	return opts.Formatter(cmd).Emit(result, func(w io.Writer) {
		fmt.Fprintln(w, result.Ordering)
	})
}
