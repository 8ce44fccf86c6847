// Package config loads auramodel configuration written in CUE.
//
// The embedded schema (schema.cue) supplies defaults and constraints; a
// user file is unified with it, so unknown fields, out-of-range values
// and type errors are reported with file positions before anything runs.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/auramodel/internal/frost"
	"github.com/roach88/auramodel/internal/guard"
	"github.com/roach88/auramodel/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded, fully concrete configuration.
type Config struct {
	Threshold ThresholdConfig `json:"threshold"`
	Combiner  string          `json:"combiner"`
	Clock     ClockConfig     `json:"clock"`
	Guard     GuardConfig     `json:"guard"`
	Store     StoreConfig     `json:"store"`
}

// ThresholdConfig configures share aggregation.
type ThresholdConfig struct {
	MinWitnesses int `json:"min_witnesses"`
}

// ClockConfig configures timestamp comparison.
type ClockConfig struct {
	IgnorePhysical bool `json:"ignore_physical"`
}

// GuardConfig configures effect chain evaluation.
type GuardConfig struct {
	Grant  string `json:"grant"`
	Budget uint64 `json:"budget"`
}

// StoreConfig configures journal persistence.
type StoreConfig struct {
	Path string `json:"path"`
}

// ConfigError is a configuration problem with its CUE source position.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := Parse("", nil)
	if err != nil {
		// The embedded schema is fixed at build time.
		panic(fmt.Sprintf("config: embedded schema invalid: %v", err))
	}
	return cfg
}

// Load reads and validates a CUE configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates CUE source against the schema. filename is used for
// error positions only. Nil or empty src yields the defaults.
func Parse(filename string, src []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, formatCUEError(err, "schema.cue")
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def
	if len(src) > 0 {
		user := ctx.CompileBytes(src, cue.Filename(filename))
		if err := user.Err(); err != nil {
			return Config{}, formatCUEError(err, filename)
		}
		v = def.Unify(user)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err, filename)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(err, filename)
	}
	return cfg, nil
}

// Aggregator builds the share aggregator described by the config.
func (c Config) Aggregator() (frost.Aggregator, error) {
	comb, err := frost.NewCombiner(c.Combiner)
	if err != nil {
		return frost.Aggregator{}, &ConfigError{Field: "combiner", Message: err.Error()}
	}
	return frost.Aggregator{Threshold: c.Threshold.MinWitnesses, Combiner: comb}, nil
}

// Evaluator builds the guard evaluator described by the config.
func (c Config) Evaluator() (guard.Evaluator, error) {
	grant, err := ir.ParseCapRequirement(c.Guard.Grant)
	if err != nil {
		return guard.Evaluator{}, &ConfigError{Field: "guard.grant", Message: err.Error()}
	}
	return guard.Evaluator{Grant: grant, Budget: c.Guard.Budget}, nil
}

// Policy returns the timestamp comparison policy.
func (c Config) Policy() ir.Policy {
	return ir.Policy{IgnorePhysical: c.Clock.IgnorePhysical}
}

// formatCUEError keeps the first CUE error together with a position,
// preferring one in filename over one in the schema.
func formatCUEError(err error, filename string) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ConfigError{Field: "cue", Message: err.Error()}
	}

	var positions []token.Pos
	for _, e := range errs {
		positions = append(positions, e.Position())
		positions = append(positions, errors.Positions(e)...)
	}

	ce := &ConfigError{Field: "cue", Message: errs[0].Error()}
	for _, pos := range positions {
		if !pos.IsValid() {
			continue
		}
		if !ce.Pos.IsValid() {
			ce.Pos = pos
		}
		if pos.Filename() == filename {
			ce.Pos = pos
			break
		}
	}
	return ce
}
