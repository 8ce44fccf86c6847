package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/auramodel/internal/ir"
	"github.com/roach88/auramodel/internal/store"
)

// JournalOptions holds flags shared by the journal subcommands.
type JournalOptions struct {
	*RootOptions
	Database string
	Payloads []string
}

// NewJournalCommand creates the journal command group.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Manage persisted journal replicas",
		Long: `Create, extend, inspect and merge journal replicas stored in SQLite.

Replicas stay reduced: appending a fact the replica already holds is a
no-op. The database defaults to store.path from the configuration.

Examples:
  auramodel journal create alice --db ./replicas.db
  auramodel journal append alice f1 f2 --db ./replicas.db
  auramodel journal append alice --payload '{"kind":"grant"}' --db ./replicas.db
  auramodel journal merge alice bob --db ./replicas.db
  auramodel journal show alice --db ./replicas.db
  auramodel journal delete bob --db ./replicas.db`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite database path (overrides config store.path)")

	cmd.AddCommand(newJournalCreateCommand(opts))
	cmd.AddCommand(newJournalAppendCommand(opts))
	cmd.AddCommand(newJournalShowCommand(opts))
	cmd.AddCommand(newJournalMergeCommand(opts))
	cmd.AddCommand(newJournalLocateCommand(opts))
	cmd.AddCommand(newJournalDeleteCommand(opts))

	return cmd
}

func newJournalCreateCommand(opts *JournalOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "create [name]",
		Short:         "Create an empty replica (named by UUID if no name is given)",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return withStore(opts, cmd, func(ctx context.Context, st *store.Store) error {
				id, err := st.CreateReplica(ctx, name)
				if err != nil {
					return storeError(err)
				}
				return opts.Formatter(cmd).Emit(map[string]string{"replica": id}, func(w io.Writer) {
					fmt.Fprintf(w, "created replica %s\n", id)
				})
			})
		},
	}
}

func newJournalAppendCommand(opts *JournalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "append <replica> [fact]...",
		Short: "Append facts to a replica",
		Long: `Append facts to a replica.

Plain arguments are fact IDs. Each --payload is a JSON object whose fact
ID is its content address, so the same payload always names the same fact.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			facts := journalArg(args[1:])
			for _, p := range opts.Payloads {
				f, err := payloadFact(p)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid payload", err)
				}
				facts = append(facts, f)
			}
			if len(facts) == 0 {
				return NewExitError(ExitCommandError, "nothing to append: give fact IDs or --payload")
			}

			return withStore(opts, cmd, func(ctx context.Context, st *store.Store) error {
				added, err := st.Append(ctx, args[0], facts...)
				if err != nil {
					return storeError(err)
				}
				data := map[string]any{
					"replica": args[0],
					"offered": len(facts),
					"added":   added,
					"facts":   factIDs(facts),
				}
				return opts.Formatter(cmd).Emit(data, func(w io.Writer) {
					fmt.Fprintf(w, "appended %d of %d fact(s) to %s\n", added, len(facts), args[0])
				})
			})
		},
	}

	cmd.Flags().StringArrayVar(&opts.Payloads, "payload", nil, "content-addressed fact payload as a JSON object (repeatable)")

	return cmd
}

func newJournalShowCommand(opts *JournalOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show [replica]",
		Short:         "Show a replica's facts, or list replicas",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(ctx context.Context, st *store.Store) error {
				out := opts.Formatter(cmd)
				if len(args) == 0 {
					replicas, err := st.ListReplicas(ctx)
					if err != nil {
						return storeError(err)
					}
					return out.Emit(replicas, func(w io.Writer) {
						if len(replicas) == 0 {
							fmt.Fprintln(w, "No replicas.")
							return
						}
						for _, r := range replicas {
							fmt.Fprintf(w, "%s\t%d fact(s)\n", r.ID, r.Facts)
						}
					})
				}

				j, err := st.Load(ctx, args[0])
				if err != nil {
					return storeError(err)
				}
				payloads := make([][]byte, len(j))
				for i, f := range j {
					if f.Payload == nil {
						continue
					}
					payloads[i], err = ir.MarshalCanonical(f.Payload)
					if err != nil {
						return WrapExitError(ExitCommandError, fmt.Sprintf("failed to render fact %s", f.ID), err)
					}
				}
				return out.Emit(j, func(w io.Writer) {
					for i, f := range j {
						if payloads[i] == nil {
							fmt.Fprintf(w, "%d\t%s\n", i, f.ID)
							continue
						}
						fmt.Fprintf(w, "%d\t%s\t%s\n", i, f.ID, payloads[i])
					}
				})
			})
		},
	}
}

func newJournalMergeCommand(opts *JournalOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "merge <dst> <src>",
		Short:         "Merge src into dst, leaving src unchanged",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(ctx context.Context, st *store.Store) error {
				merged, err := st.MergeInto(ctx, args[0], args[1])
				if err != nil {
					return storeError(err)
				}
				return emitJournal(opts.Formatter(cmd), factIDs(merged))
			})
		},
	}
}

func newJournalLocateCommand(opts *JournalOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "locate <fact>",
		Short:         "List replicas holding a fact",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(ctx context.Context, st *store.Store) error {
				ids, err := st.Locate(ctx, ir.FactID(args[0]))
				if err != nil {
					return storeError(err)
				}
				return opts.Formatter(cmd).Emit(map[string]any{"fact": args[0], "replicas": ids}, func(w io.Writer) {
					for _, id := range ids {
						fmt.Fprintln(w, id)
					}
				})
			})
		},
	}
}

func newJournalDeleteCommand(opts *JournalOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <replica>",
		Short:         "Delete a replica and its facts",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(ctx context.Context, st *store.Store) error {
				if err := st.DeleteReplica(ctx, args[0]); err != nil {
					return storeError(err)
				}
				return opts.Formatter(cmd).Emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "deleted replica %s\n", args[0])
				})
			})
		},
	}
}

// withStore opens the configured database for the duration of fn.
func withStore(opts *JournalOptions, cmd *cobra.Command, fn func(ctx context.Context, st *store.Store) error) error {
	path := opts.Database
	if path == "" {
		cfg, err := opts.LoadConfig()
		if err != nil {
			return err
		}
		path = cfg.Store.Path
	}

	st, err := store.Open(path, store.WithLogger(opts.Logger(cmd)))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, st)
}

// storeError maps store failures to exit codes.
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrReplicaNotFound):
		return WrapExitError(ExitCommandError, "unknown replica", err)
	case errors.Is(err, store.ErrReplicaExists):
		return WrapExitError(ExitCommandError, "replica exists", err)
	default:
		return WrapExitError(ExitCommandError, "store operation failed", err)
	}
}

// payloadFact builds a content-addressed fact from a JSON object.
func payloadFact(src string) (ir.Fact, error) {
	var payload ir.IRObject
	if err := json.Unmarshal([]byte(src), &payload); err != nil {
		return ir.Fact{}, err
	}
	id, err := ir.FactIDFor(payload)
	if err != nil {
		return ir.Fact{}, err
	}
	return ir.Fact{ID: id, Payload: payload}, nil
}
