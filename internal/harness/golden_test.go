package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auramodel/internal/config"
)

func TestRunWithGolden(t *testing.T) {
	for _, file := range []string{"compare", "guards", "journal"} {
		t.Run(file, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + file + ".yaml")
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, s, config.Default()))
		})
	}
}

func TestCanonicalTrace_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/aggregate.yaml")
	require.NoError(t, err)

	first, err := Run(s, config.Default())
	require.NoError(t, err)
	second, err := Run(s, config.Default())
	require.NoError(t, err)

	a, err := CanonicalTrace(s.Name, first)
	require.NoError(t, err)
	b, err := CanonicalTrace(s.Name, second)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.NotContains(t, string(a), first.RunID, "run IDs stay out of golden output")
}
