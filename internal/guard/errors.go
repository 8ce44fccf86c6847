package guard

import (
	"errors"
	"fmt"

	"github.com/roach88/auramodel/internal/ir"
)

// GuardError reports the step at which an Evaluator stopped a chain.
type GuardError struct {
	// Code identifies the violation.
	Code GuardErrorCode

	// Message is a human-readable description.
	Message string

	// StepIndex is the position of the step that failed.
	StepIndex int

	// Charged is the cost accumulated before the failing step.
	Charged uint64
}

// GuardErrorCode categorizes guard violations.
type GuardErrorCode string

const (
	// ErrCodeCapabilityDenied indicates a step needs more than the grant.
	ErrCodeCapabilityDenied GuardErrorCode = "CAPABILITY_DENIED"

	// ErrCodeBudgetExceeded indicates cumulative cost passed the budget.
	ErrCodeBudgetExceeded GuardErrorCode = "BUDGET_EXCEEDED"
)

// Error implements the error interface.
func (e *GuardError) Error() string {
	return fmt.Sprintf("%s: %s (step=%d, charged=%d)", e.Code, e.Message, e.StepIndex, e.Charged)
}

// IsCapabilityDenied returns true if a step's requirement exceeded the grant.
func IsCapabilityDenied(err error) bool {
	var ge *GuardError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeCapabilityDenied
	}
	return false
}

// IsBudgetExceeded returns true if the chain ran over its budget.
func IsBudgetExceeded(err error) bool {
	var ge *GuardError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeBudgetExceeded
	}
	return false
}

func newCapabilityDeniedError(index int, charged uint64, required, grant ir.CapRequirement) *GuardError {
	return &GuardError{
		Code:      ErrCodeCapabilityDenied,
		Message:   fmt.Sprintf("step requires %s, grant is %s", required, grant),
		StepIndex: index,
		Charged:   charged,
	}
}

func newBudgetExceededError(index int, charged, budget uint64) *GuardError {
	return &GuardError{
		Code:      ErrCodeBudgetExceeded,
		Message:   fmt.Sprintf("cost would exceed budget %d", budget),
		StepIndex: index,
		Charged:   charged,
	}
}
