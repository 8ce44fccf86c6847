package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/auramodel/internal/frost"
	"github.com/roach88/auramodel/internal/ir"
)

// Scenario is a named list of kernel checks loaded from YAML.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Checks run in order. Each one evaluates a single kernel call.
	Checks []Check `yaml:"checks"`
}

// Check is one kernel call with its inputs and expected outputs.
// Which input fields are required depends on Kernel.
type Check struct {
	// Kernel selects the operation, one of the Kernel* constants.
	Kernel string `yaml:"kernel"`

	// Name is an optional label shown in traces and errors.
	Name string `yaml:"name,omitempty"`

	// Shares is the batch for can_aggregate and aggregate.
	Shares []ShareInput `yaml:"shares,omitempty"`

	// Threshold and Combiner override the configured aggregator.
	Threshold *int   `yaml:"threshold,omitempty"`
	Combiner  string `yaml:"combiner,omitempty"`

	// Steps is the effect chain for guards and evaluate.
	Steps []StepInput `yaml:"steps,omitempty"`

	// Grant and Budget override the configured evaluator.
	Grant  string  `yaml:"grant,omitempty"`
	Budget *uint64 `yaml:"budget,omitempty"`

	// Journal is the input to reduce.
	Journal []string `yaml:"journal,omitempty"`

	// A and B are the replicas for merge.
	A []string `yaml:"a,omitempty"`
	B []string `yaml:"b,omitempty"`

	// Left, Right and Policy are the inputs to compare.
	Left   *TimeStampInput `yaml:"left,omitempty"`
	Right  *TimeStampInput `yaml:"right,omitempty"`
	Policy *PolicyInput    `yaml:"policy,omitempty"`

	// Expect holds the expected outputs. Only fields that are set are checked.
	Expect Expect `yaml:"expect"`
}

// ShareInput is the YAML form of ir.Share.
type ShareInput struct {
	SID     uint64 `yaml:"sid"`
	Round   uint64 `yaml:"round"`
	Witness uint64 `yaml:"witness"`
	Data    uint64 `yaml:"data"`
}

// StepInput is the YAML form of ir.Step. CapReq defaults to "none".
type StepInput struct {
	FlowCost uint64 `yaml:"flow_cost"`
	CapReq   string `yaml:"cap_req,omitempty"`
}

// TimeStampInput is the YAML form of ir.TimeStamp.
type TimeStampInput struct {
	Logical    uint64 `yaml:"logical"`
	OrderClock uint64 `yaml:"order_clock"`
}

// PolicyInput is the YAML form of ir.Policy.
type PolicyInput struct {
	IgnorePhysical bool `yaml:"ignore_physical"`
}

// Expect lists expected outputs. Nil or empty fields are not checked.
type Expect struct {
	// OK is the can_aggregate result, or whether aggregate produced a signature.
	OK *bool `yaml:"ok,omitempty"`

	// Signature is the expected aggregate signature value.
	Signature *uint64 `yaml:"signature,omitempty"`

	// Reason is the expected rejection code from aggregate (e.g. ROUND_MISMATCH).
	Reason string `yaml:"reason,omitempty"`

	// TotalCost is the expected guards or evaluate result.
	TotalCost *uint64 `yaml:"total_cost,omitempty"`

	// Error is the expected evaluate error code (e.g. BUDGET_EXCEEDED).
	Error string `yaml:"error,omitempty"`

	// Journal is the expected reduce or merge result, in order.
	Journal []string `yaml:"journal,omitempty"`

	// Ordering is the expected compare result: lt, eq or gt.
	Ordering string `yaml:"ordering,omitempty"`
}

// Kernel names accepted in Check.Kernel.
const (
	KernelCanAggregate = "can_aggregate"
	KernelAggregate    = "aggregate"
	KernelGuards       = "guards"
	KernelEvaluate     = "evaluate"
	KernelReduce       = "reduce"
	KernelMerge        = "merge"
	KernelCompare      = "compare"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Checks) == 0 {
		return fmt.Errorf("checks list is required and must be non-empty")
	}

	for i := range s.Checks {
		if err := validateCheck(i, &s.Checks[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateCheck validates a single check based on its kernel.
func validateCheck(index int, c *Check) error {
	if c.Kernel == "" {
		return fmt.Errorf("checks[%d]: kernel is required", index)
	}

	switch c.Kernel {
	case KernelCanAggregate:
		if c.Expect.OK == nil {
			return fmt.Errorf("checks[%d]: expect.ok is required for can_aggregate", index)
		}
	case KernelAggregate:
		if c.Threshold != nil && *c.Threshold < 1 {
			return fmt.Errorf("checks[%d]: threshold must be at least 1", index)
		}
		if c.Combiner != "" {
			if _, err := frost.NewCombiner(c.Combiner); err != nil {
				return fmt.Errorf("checks[%d]: %w", index, err)
			}
		}
		if c.Expect.OK == nil && c.Expect.Signature == nil && c.Expect.Reason == "" {
			return fmt.Errorf("checks[%d]: expect needs ok, signature or reason for aggregate", index)
		}
	case KernelGuards, KernelEvaluate:
		for j, step := range c.Steps {
			if step.CapReq == "" {
				continue
			}
			if _, err := ir.ParseCapRequirement(step.CapReq); err != nil {
				return fmt.Errorf("checks[%d].steps[%d]: %w", index, j, err)
			}
		}
		if c.Kernel == KernelGuards && c.Expect.TotalCost == nil {
			return fmt.Errorf("checks[%d]: expect.total_cost is required for guards", index)
		}
		if c.Kernel == KernelEvaluate {
			if c.Grant != "" {
				if _, err := ir.ParseCapRequirement(c.Grant); err != nil {
					return fmt.Errorf("checks[%d]: grant: %w", index, err)
				}
			}
			if c.Expect.TotalCost == nil && c.Expect.Error == "" {
				return fmt.Errorf("checks[%d]: expect needs total_cost or error for evaluate", index)
			}
		}
	case KernelReduce:
		if c.Expect.Journal == nil {
			return fmt.Errorf("checks[%d]: expect.journal is required for reduce", index)
		}
	case KernelMerge:
		if c.Expect.Journal == nil {
			return fmt.Errorf("checks[%d]: expect.journal is required for merge", index)
		}
	case KernelCompare:
		if c.Left == nil || c.Right == nil {
			return fmt.Errorf("checks[%d]: left and right are required for compare", index)
		}
		if c.Expect.Ordering == "" {
			return fmt.Errorf("checks[%d]: expect.ordering is required for compare", index)
		}
		if _, err := ir.ParseOrdering(c.Expect.Ordering); err != nil {
			return fmt.Errorf("checks[%d]: expect.ordering: %w", index, err)
		}
	default:
		return fmt.Errorf("checks[%d]: unknown kernel %q", index, c.Kernel)
	}

	return nil
}

// label names a check in traces and error messages.
func (c *Check) label(index int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("checks[%d] %s", index, c.Kernel)
}

func (s ShareInput) toIR() ir.Share {
	return ir.Share{
		SID:     ir.SessionID(s.SID),
		Round:   ir.Round(s.Round),
		Witness: ir.WitnessID(s.Witness),
		Data:    ir.ShareData(s.Data),
	}
}

func (t TimeStampInput) toIR() ir.TimeStamp {
	return ir.TimeStamp{Logical: t.Logical, OrderClock: t.OrderClock}
}

func journalFromIDs(ids []string) ir.Journal {
	j := make(ir.Journal, len(ids))
	for i, id := range ids {
		j[i] = ir.NewFact(ir.FactID(id))
	}
	return j
}
