package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/auramodel/internal/journal"
)

// JournalResult lists the facts of a journal in order.
type JournalResult struct {
	Facts []string `json:"facts"`
	Count int      `json:"count"`
}

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	A []string
	B []string
}

// NewReduceCommand creates the reduce command.
func NewReduceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reduce <fact>...",
		Short: "Remove duplicate facts, keeping first occurrences",
		Long: `Reduce a journal given as fact IDs in order.

The first occurrence of each fact survives and keeps its position
relative to the other survivors.

Examples:
  auramodel reduce f1 f2 f1 f3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reduced := journal.Reduce(journalArg(args))
			return emitJournal(rootOpts.Formatter(cmd), factIDs(reduced))
		},
	}
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Join two journals",
		Long: `Merge two journals: reduce(a ++ b).

The result holds every fact of either side once. Facts of --a come
first; swapping the sides yields the same facts in a different order.

Examples:
  auramodel merge --a f1,f2 --b f2,f3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := journal.Merge(journalArg(opts.A), journalArg(opts.B))
			return emitJournal(opts.Formatter(cmd), factIDs(merged))
		},
	}

	cmd.Flags().StringSliceVar(&opts.A, "a", nil, "left journal, comma-separated fact IDs")
	cmd.Flags().StringSliceVar(&opts.B, "b", nil, "right journal, comma-separated fact IDs")

	return cmd
}

func emitJournal(out *OutputFormatter, ids []string) error {
	result := JournalResult{Facts: ids, Count: len(ids)}
	return out.Emit(result, func(w io.Writer) {
		if len(ids) == 0 {
			fmt.Fprintln(w, "(empty)")
			return
		}
		fmt.Fprintln(w, strings.Join(ids, " "))
	})
}
