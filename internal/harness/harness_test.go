package harness

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/auramodel/internal/config"
	"github.com/roach88/auramodel/internal/testutil"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_BundledScenariosPass(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s, config.Default())
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(s.Checks))
		})
	}
}

func TestRun_MismatchReportsDiff(t *testing.T) {
	s := mustParse(t, `
name: wrong
description: expects the wrong merge order
checks:
  - kernel: merge
    a: [f2, f3]
    b: [f1, f2]
    expect:
      journal: [f1, f2, f3]
  - kernel: compare
    left: {logical: 1, order_clock: 1}
    right: {logical: 1, order_clock: 1}
    expect:
      ordering: EQ
`)

	result, err := Run(s, config.Default())
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1, "only the merge check fails")
	assert.Contains(t, result.Errors[0], "checks[0] merge: output mismatch (-want +got)")
	assert.Len(t, result.Trace, 2, "later checks still run")
}

func TestRun_TraceSequence(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/compare.yaml")
	require.NoError(t, err)

	result, err := Run(s, config.Default())
	require.NoError(t, err)

	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
	}
}

func TestRun_ConfigDefaults(t *testing.T) {
	s := mustParse(t, `
name: configured
description: config supplies threshold and policy
checks:
  - kernel: aggregate
    shares:
      - {sid: 1, round: 1, witness: 1, data: 5}
    expect:
      reason: BELOW_THRESHOLD
  - kernel: compare
    left: {logical: 1, order_clock: 5}
    right: {logical: 1, order_clock: 9}
    expect:
      ordering: eq
  - kernel: evaluate
    steps: [{flow_cost: 1, cap_req: write}]
    expect:
      error: CAPABILITY_DENIED
`)

	cfg := config.Default()
	cfg.Threshold.MinWitnesses = 2
	cfg.Clock.IgnorePhysical = true
	cfg.Guard.Grant = "read"

	result, err := Run(s, cfg)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_LagrangeSignature(t *testing.T) {
	// f(x) = 7 + 3x: shares at x=1 and x=2 interpolate back to 7.
	s := mustParse(t, `
name: lagrange
description: real combination over the prime field
checks:
  - kernel: aggregate
    combiner: lagrange
    threshold: 2
    shares:
      - {sid: 1, round: 1, witness: 1, data: 10}
      - {sid: 1, round: 1, witness: 2, data: 13}
    expect:
      ok: true
      signature: 7
  - kernel: aggregate
    combiner: lagrange
    shares:
      - {sid: 1, round: 1, witness: 1, data: 10}
      - {sid: 1, round: 1, witness: 1, data: 11}
    expect:
      reason: CONFLICTING_SHARE
`)

	result, err := Run(s, config.Default())
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.NotEmpty(t, result.Trace[0].Output["transcript"])
}

func TestRun_RunIDAndLogging(t *testing.T) {
	var logs bytes.Buffer
	r := NewRunner(config.Default(),
		WithRunIDs(testutil.NewSequentialIDGenerator("run")),
		WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)

	s, err := LoadScenario("testdata/scenarios/journal.yaml")
	require.NoError(t, err)

	first, err := r.Run(s)
	require.NoError(t, err)
	second, err := r.Run(s)
	require.NoError(t, err)

	assert.Equal(t, "run-1", first.RunID)
	assert.Equal(t, "run-2", second.RunID)
	assert.Equal(t, first.Trace, second.Trace)
	assert.Contains(t, logs.String(), "scenario finished")
	assert.Contains(t, logs.String(), "check passed")
}

func TestRunAll_PreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, parallel := range []int{0, 1, 3} {
		results, err := NewRunner(config.Default()).RunAll(context.Background(), scenarios, parallel)
		require.NoError(t, err)
		require.Len(t, results, len(scenarios))
		for i, res := range results {
			assert.Equal(t, scenarios[i].Name, res.Scenario)
			assert.True(t, res.Pass)
		}
	}
}

func TestRunAll_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewRunner(config.Default()).RunAll(ctx, scenarios, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAll_Empty(t *testing.T) {
	defer goleak.VerifyNone(t)

	results, err := NewRunner(config.Default()).RunAll(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}
