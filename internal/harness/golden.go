package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/auramodel/internal/config"
	"github.com/roach88/auramodel/internal/ir"
)

// TraceSnapshot is the golden-file form of a result. RunID is left out
// so the same scenario always produces the same bytes.
type TraceSnapshot struct {
	Version      string       `json:"version"`
	ScenarioName string       `json:"scenario_name"`
	Pass         bool         `json:"pass"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		traceList[i] = map[string]any{
			"seq":    event.Seq,
			"check":  event.Check,
			"kernel": event.Kernel,
			"input":  event.Input,
			"output": event.Output,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"pass":          s.Pass,
		"trace":         traceList,
		"version":       s.Version,
	}
}

// CanonicalTrace renders a result as canonical JSON.
func CanonicalTrace(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		Version:      ir.TraceVersion,
		ScenarioName: scenarioName,
		Pass:         result.Pass,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, cfg config.Config) error {
	t.Helper()

	result, err := Run(scenario, cfg)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := CanonicalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
