package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/auramodel/internal/harness"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Update     bool   // regenerate golden files
	Filter     string // scenario name filter (glob pattern)
	Parallel   int
	Seed       uint64
	Iterations int
	NoProps    bool
}

// ScenarioResult holds the result of a single scenario or property run.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// CheckResult holds the overall check result.
type CheckResult struct {
	Properties []ScenarioResult `json:"properties"`
	Scenarios  []ScenarioResult `json:"scenarios"`
	Passed     int              `json:"passed"`
	Failed     int              `json:"failed"`
	Total      int              `json:"total"`
}

func (r *CheckResult) record(list *[]ScenarioResult, res ScenarioResult) {
	*list = append(*list, res)
	r.Total++
	if res.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [scenarios-dir]",
		Short: "Check the kernels against their laws and YAML scenarios",
		Long: `Run the kernel property suite, then every scenario in scenarios-dir.

Each scenario's trace is compared with golden/<name>.golden next to the
scenario files when that file exists; --update rewrites it instead.

Exit codes:
  0 - All properties and scenarios passed
  1 - One or more failed
  2 - Command error (invalid paths, bad scenario files, etc.)

Examples:
  auramodel check
  auramodel check ./scenarios
  auramodel check ./scenarios --filter "journal-*" --parallel 4
  auramodel check ./scenarios --update`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runCheck(opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name glob")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 4, "scenarios run concurrently (0 for unlimited)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "property corpus seed")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 500, "property iterations")
	cmd.Flags().BoolVar(&opts.NoProps, "no-properties", false, "skip the property suite")

	return cmd
}

func runCheck(opts *CheckOptions, dir string, cmd *cobra.Command) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	logger := opts.Logger(cmd)
	out := opts.Formatter(cmd)
	w := cmd.OutOrStdout()
	text := opts.Format != "json"

	result := CheckResult{
		Properties: []ScenarioResult{},
		Scenarios:  []ScenarioResult{},
	}

	if !opts.NoProps {
		props := harness.CheckProperties(opts.Seed, opts.Iterations)
		failures := make(map[string]string, len(props.Errors))
		for _, ev := range props.Trace {
			if msg, ok := ev.Output["counterexample"].(string); ok {
				failures[ev.Check] = msg
			}
		}
		for _, ev := range props.Trace {
			res := ScenarioResult{Name: ev.Check, Pass: true}
			if msg, failed := failures[ev.Check]; failed {
				res.Pass = false
				res.Errors = []string{msg}
			}
			result.record(&result.Properties, res)
			if text {
				printOutcome(cmd, res)
			}
		}
	}

	if dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
		}

		scenarios, err := harness.LoadScenarios(dir)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load scenarios", err)
		}
		scenarios, err = filterScenarios(scenarios, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		runner := harness.NewRunner(cfg, harness.WithLogger(logger))
		results, err := runner.RunAll(ctx, scenarios, opts.Parallel)
		if err != nil {
			return WrapExitError(ExitCommandError, "scenario execution failed", err)
		}

		for i, s := range scenarios {
			res := checkGolden(s, results[i], dir, opts.Update)
			result.record(&result.Scenarios, res)
			if text {
				printOutcome(cmd, res)
			}
		}
	}

	if !text {
		if result.Failed > 0 {
			return out.Fail(ExitFailure, "E_CHECK_FAILED", fmt.Sprintf("%d check(s) failed", result.Failed), result)
		}
		return out.Success(result)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", result.Failed))
	}
	fmt.Fprintln(w, "✓ All checks passed")
	return nil
}

// filterScenarios keeps scenarios whose name matches pattern.
func filterScenarios(scenarios []*harness.Scenario, pattern string) ([]*harness.Scenario, error) {
	if pattern == "" {
		return scenarios, nil
	}
	kept := make([]*harness.Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		ok, err := filepath.Match(pattern, s.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, s)
		}
	}
	return kept, nil
}

// checkGolden folds golden comparison into a scenario outcome.
func checkGolden(s *harness.Scenario, res *harness.Result, dir string, update bool) ScenarioResult {
	out := ScenarioResult{Name: s.Name, Pass: res.Pass, Errors: res.Errors}
	if len(out.Errors) == 0 {
		out.Errors = nil
	}

	current, err := harness.CanonicalTrace(s.Name, res)
	if err != nil {
		out.Pass = false
		out.Errors = append(out.Errors, fmt.Sprintf("failed to marshal trace: %v", err))
		return out
	}

	goldenPath := goldenFilePath(dir, s.Name)
	if update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			out.Pass = false
			out.Errors = append(out.Errors, fmt.Sprintf("failed to create golden directory: %v", err))
			return out
		}
		if err := os.WriteFile(goldenPath, current, 0644); err != nil {
			out.Pass = false
			out.Errors = append(out.Errors, fmt.Sprintf("failed to write golden file: %v", err))
		}
		return out
	}

	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		return out
	}
	if err != nil {
		out.Pass = false
		out.Errors = append(out.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return out
	}
	if !bytes.Equal(golden, current) {
		out.Pass = false
		out.Errors = append(out.Errors, "trace does not match golden file (run with --update to regenerate)")
	}
	return out
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(dir, name string) string {
	return filepath.Join(dir, "golden", name+".golden")
}

func printOutcome(cmd *cobra.Command, res ScenarioResult) {
	w := cmd.OutOrStdout()
	if res.Pass {
		fmt.Fprintf(w, "✓ %s\n", res.Name)
		return
	}
	fmt.Fprintf(w, "✗ %s\n", res.Name)
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
