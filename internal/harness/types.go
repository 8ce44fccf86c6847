package harness

// TraceEvent records one evaluated check. Input and Output hold only
// canonical-JSON-safe values (string, bool, uint64, []any, map[string]any)
// so the trace can be written to golden files byte-for-byte.
type TraceEvent struct {
	Seq    int64          `json:"seq"`
	Check  string         `json:"check"`
	Kernel string         `json:"kernel"`
	Input  map[string]any `json:"input"`
	Output map[string]any `json:"output"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the name of the scenario that produced this result.
	Scenario string `json:"scenario"`

	// RunID identifies this execution. Not part of golden traces.
	RunID string `json:"run_id"`

	// Pass indicates overall success: every check matched its expect block.
	Pass bool `json:"pass"`

	// Trace contains every evaluated check in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains mismatch messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario, runID string) *Result {
	return &Result{
		Scenario: scenario,
		RunID:    runID,
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an evaluated check to the trace.
func (r *Result) AddTrace(seq int64, check, kernel string, input, output map[string]any) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    seq,
		Check:  check,
		Kernel: kernel,
		Input:  input,
		Output: output,
	})
}
