package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auramodel/internal/frost"
	"github.com/roach88/auramodel/internal/ir"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1, cfg.Threshold.MinWitnesses)
	assert.Equal(t, "placeholder", cfg.Combiner)
	assert.False(t, cfg.Clock.IgnorePhysical)
	assert.Equal(t, "write", cfg.Guard.Grant)
	assert.Equal(t, uint64(0), cfg.Guard.Budget)
	assert.Equal(t, "auramodel.db", cfg.Store.Path)
}

func TestParseOverrides(t *testing.T) {
	src := `
threshold: min_witnesses: 3
combiner: "lagrange"
clock: ignore_physical: true
guard: {
	grant:  "read"
	budget: 100
}
`
	cfg, err := Parse("auramodel.cue", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Threshold.MinWitnesses)
	assert.Equal(t, "lagrange", cfg.Combiner)
	assert.True(t, cfg.Clock.IgnorePhysical)
	assert.Equal(t, "read", cfg.Guard.Grant)
	assert.Equal(t, uint64(100), cfg.Guard.Budget)
	assert.Equal(t, "auramodel.db", cfg.Store.Path, "unset fields keep defaults")
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"threshold below one", `threshold: min_witnesses: 0`},
		{"unknown combiner", `combiner: "schnorr"`},
		{"unknown grant", `guard: grant: "admin"`},
		{"negative budget", `guard: budget: -1`},
		{"unknown field", `retries: 3`},
		{"wrong type", `clock: ignore_physical: "yes"`},
		{"empty store path", `store: path: ""`},
		{"syntax error", `threshold: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.cue", []byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestParseErrorCarriesPosition(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"disjunction", "combiner: \"schnorr\"\n"},
		{"grant disjunction", "guard: grant: \"admin\"\n"},
		{"bound", "threshold: min_witnesses: 0\n"},
		{"syntax", "threshold: {\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.cue", []byte(tt.src))
			require.Error(t, err)

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.True(t, ce.Pos.IsValid(), "no position in %v", err)
			assert.Contains(t, ce.Error(), ".cue:")
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auramodel.cue")
	require.NoError(t, os.WriteFile(path, []byte(`store: path: "/tmp/replicas.db"`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/replicas.db", cfg.Store.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}

func TestConfigBuilders(t *testing.T) {
	cfg := Default()
	cfg.Threshold.MinWitnesses = 2
	cfg.Combiner = "lagrange"
	cfg.Guard.Grant = "read"
	cfg.Guard.Budget = 10
	cfg.Clock.IgnorePhysical = true

	agg, err := cfg.Aggregator()
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Threshold)
	assert.IsType(t, frost.LagrangeCombiner{}, agg.Combiner)

	ev, err := cfg.Evaluator()
	require.NoError(t, err)
	assert.Equal(t, ir.CapRead, ev.Grant)
	assert.Equal(t, uint64(10), ev.Budget)

	assert.Equal(t, ir.Policy{IgnorePhysical: true}, cfg.Policy())

	cfg.Combiner = "bogus"
	_, err = cfg.Aggregator()
	assert.Error(t, err)

	cfg.Guard.Grant = "root"
	_, err = cfg.Evaluator()
	assert.Error(t, err)
}
