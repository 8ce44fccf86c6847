package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/auramodel/internal/config"
	"github.com/roach88/auramodel/internal/ir"
)

// DefaultConfigFile is read when --config is not given and the file exists.
const DefaultConfigFile = "auramodel.cue"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the auramodel CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "auramodel",
		Short: "auramodel - reference kernels for threshold signing, guard chains, journals and clocks",
		Long: `Evaluate the auramodel kernels from the command line.

Aggregate threshold signature shares, charge effect chains, reduce and
merge fact journals, compare hybrid timestamps, persist journal replicas
and check everything against YAML scenarios and the kernel laws.`,
		Version: ir.ModelVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "",
		"CUE configuration file (default ./"+DefaultConfigFile+" if present)")

	cmd.AddCommand(NewAggregateCommand(opts))
	cmd.AddCommand(NewGuardsCommand(opts))
	cmd.AddCommand(NewReduceCommand(opts))
	cmd.AddCommand(NewMergeCommand(opts))
	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// LoadConfig resolves the configuration for a command. An explicit
// --config must exist; the implicit default file is optional.
func (o *RootOptions) LoadConfig() (config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		path = DefaultConfigFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// Logger returns a text logger on cmd's stderr: debug level with
// --verbose, warnings only otherwise.
func (o *RootOptions) Logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// Formatter returns an OutputFormatter writing to cmd's streams.
func (o *RootOptions) Formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
