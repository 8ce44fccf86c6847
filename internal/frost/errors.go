package frost

import (
	"errors"
	"fmt"
)

// AggregateError explains why a share batch was rejected.
type AggregateError struct {
	// Code identifies the rejection category.
	Code AggregateErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the position of the offending share, or -1.
	Index int

	// Details contains additional context.
	Details map[string]string
}

// AggregateErrorCode categorizes rejections.
type AggregateErrorCode string

const (
	// ErrCodeEmptyBatch indicates no shares were supplied.
	ErrCodeEmptyBatch AggregateErrorCode = "EMPTY_BATCH"

	// ErrCodeSessionMismatch indicates a share from a different session than the first.
	ErrCodeSessionMismatch AggregateErrorCode = "SESSION_MISMATCH"

	// ErrCodeRoundMismatch indicates a share from a different round than the first.
	ErrCodeRoundMismatch AggregateErrorCode = "ROUND_MISMATCH"

	// ErrCodeBelowThreshold indicates too few distinct witnesses.
	ErrCodeBelowThreshold AggregateErrorCode = "BELOW_THRESHOLD"

	// ErrCodeConflictingShare indicates one witness submitted two different payloads.
	ErrCodeConflictingShare AggregateErrorCode = "CONFLICTING_SHARE"

	// ErrCodeInvalidWitness indicates a witness ID the combiner cannot use.
	ErrCodeInvalidWitness AggregateErrorCode = "INVALID_WITNESS"
)

// ErrCollectorClosed is returned when shares are added to a collector
// that already reached a terminal state.
var ErrCollectorClosed = errors.New("collector already finished")

// Error implements the error interface.
func (e *AggregateError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (share=%d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, codes ...AggregateErrorCode) bool {
	var ae *AggregateError
	if !errors.As(err, &ae) {
		return false
	}
	for _, c := range codes {
		if ae.Code == c {
			return true
		}
	}
	return false
}

// IsEmptyBatch returns true if the batch was rejected for being empty.
func IsEmptyBatch(err error) bool {
	return hasCode(err, ErrCodeEmptyBatch)
}

// IsMismatch returns true for session or round inconsistencies.
func IsMismatch(err error) bool {
	return hasCode(err, ErrCodeSessionMismatch, ErrCodeRoundMismatch)
}

// IsBelowThreshold returns true if too few distinct witnesses contributed.
func IsBelowThreshold(err error) bool {
	return hasCode(err, ErrCodeBelowThreshold)
}

// IsCombineError returns true for rejections raised while combining.
func IsCombineError(err error) bool {
	return hasCode(err, ErrCodeConflictingShare, ErrCodeInvalidWitness)
}

func newEmptyBatchError() *AggregateError {
	return &AggregateError{
		Code:    ErrCodeEmptyBatch,
		Message: "no shares to aggregate",
		Index:   -1,
	}
}

func newSessionMismatchError(index int, want, got uint64) *AggregateError {
	return &AggregateError{
		Code:    ErrCodeSessionMismatch,
		Message: fmt.Sprintf("share belongs to session %d, batch is session %d", got, want),
		Index:   index,
		Details: map[string]string{
			"want_sid": fmt.Sprintf("%d", want),
			"got_sid":  fmt.Sprintf("%d", got),
		},
	}
}

func newRoundMismatchError(index int, want, got uint64) *AggregateError {
	return &AggregateError{
		Code:    ErrCodeRoundMismatch,
		Message: fmt.Sprintf("share belongs to round %d, batch is round %d", got, want),
		Index:   index,
		Details: map[string]string{
			"want_round": fmt.Sprintf("%d", want),
			"got_round":  fmt.Sprintf("%d", got),
		},
	}
}

func newBelowThresholdError(distinct, threshold int) *AggregateError {
	return &AggregateError{
		Code:    ErrCodeBelowThreshold,
		Message: fmt.Sprintf("%d distinct witnesses, threshold is %d", distinct, threshold),
		Index:   -1,
		Details: map[string]string{
			"distinct":  fmt.Sprintf("%d", distinct),
			"threshold": fmt.Sprintf("%d", threshold),
		},
	}
}

func newConflictingShareError(index int, witness uint64) *AggregateError {
	return &AggregateError{
		Code:    ErrCodeConflictingShare,
		Message: fmt.Sprintf("witness %d submitted conflicting share data", witness),
		Index:   index,
	}
}

func newInvalidWitnessError(index int, witness uint64, reason string) *AggregateError {
	return &AggregateError{
		Code:    ErrCodeInvalidWitness,
		Message: fmt.Sprintf("witness %d: %s", witness, reason),
		Index:   index,
	}
}
