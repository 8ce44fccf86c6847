package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/auramodel/internal/frost"
	"github.com/roach88/auramodel/internal/ir"
)

// AggregateOptions holds flags for the aggregate command.
type AggregateOptions struct {
	*RootOptions
	Shares    []string
	Threshold int
	Combiner  string
	CheckOnly bool
}

// AggregateResult is the outcome of an aggregate run.
type AggregateResult struct {
	OK         bool    `json:"ok"`
	Signature  *uint64 `json:"signature,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
	Witnesses  int     `json:"witnesses"`
	Threshold  int     `json:"threshold"`
	Combiner   string  `json:"combiner"`
}

// NewAggregateCommand creates the aggregate command.
func NewAggregateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AggregateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Combine threshold signature shares",
		Long: `Combine a batch of signature shares into one signature.

A batch is accepted only if it is non-empty and every share carries the
first share's session and round. With --threshold above 1 the batch must
also hold that many distinct witnesses.

Exit codes:
  0 - Signature produced (or batch aggregatable with --check)
  1 - Batch rejected
  2 - Command error

Examples:
  auramodel aggregate --share 1:1:1:10 --share 1:1:2:13
  auramodel aggregate --share 1:1:1:10 --share 1:1:2:13 --combiner lagrange --threshold 2
  auramodel aggregate --share 1:1:1:10 --share 1:2:2:13 --check`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Shares, "share", "s", nil, "share as sid:round:witness:data (repeatable)")
	cmd.Flags().IntVar(&opts.Threshold, "threshold", 1, "minimum distinct witnesses (overrides config)")
	cmd.Flags().StringVar(&opts.Combiner, "combiner", frost.CombinerPlaceholder, "combiner: placeholder|lagrange (overrides config)")
	cmd.Flags().BoolVar(&opts.CheckOnly, "check", false, "only report whether the batch can be aggregated")

	return cmd
}

func runAggregate(opts *AggregateOptions, cmd *cobra.Command) error {
	out := opts.Formatter(cmd)
	logger := opts.Logger(cmd)

	shares := make([]ir.Share, 0, len(opts.Shares))
	for _, s := range opts.Shares {
		share, err := parseShare(s)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid share", err)
		}
		shares = append(shares, share)
	}

	if opts.CheckOnly {
		ok := frost.CanAggregate(shares)
		if err := out.Emit(map[string]bool{"ok": ok}, func(w io.Writer) {
			fmt.Fprintf(w, "can aggregate: %t\n", ok)
		}); err != nil {
			return err
		}
		if !ok {
			return NewExitError(ExitFailure, "batch cannot be aggregated")
		}
		return nil
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold.MinWitnesses = opts.Threshold
	}
	if cmd.Flags().Changed("combiner") {
		cfg.Combiner = opts.Combiner
	}
	agg, err := cfg.Aggregator()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid aggregator", err)
	}

	logger.Debug("aggregating",
		"shares", len(shares),
		"threshold", agg.Threshold,
		"combiner", cfg.Combiner)

	sig, err := agg.Sign(shares)
	if err != nil {
		var ae *frost.AggregateError
		if errors.As(err, &ae) {
			return out.Fail(ExitFailure, string(ae.Code), ae.Message, ae.Details)
		}
		return WrapExitError(ExitCommandError, "aggregate failed", err)
	}

	transcript, err := ir.TranscriptHash(shares)
	if err != nil {
		return WrapExitError(ExitCommandError, "transcript hash failed", err)
	}

	result := AggregateResult{
		OK:         true,
		Signature:  &sig.Value,
		Transcript: transcript,
		Witnesses:  frost.DistinctWitnesses(shares),
		Threshold:  agg.Threshold,
		Combiner:   cfg.Combiner,
	}
	return out.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "signature:  %d\n", sig.Value)
		fmt.Fprintf(w, "transcript: %s\n", transcript)
		fmt.Fprintf(w, "witnesses:  %d (threshold %d, %s)\n", result.Witnesses, result.Threshold, result.Combiner)
	})
}
