package ir

import (
	"fmt"
	"strings"
)

// SessionID scopes a single signing session.
type SessionID uint64

// Round scopes one attempt inside a signing session.
type Round uint64

// WitnessID identifies the participant that produced a share.
type WitnessID uint64

// ShareData is the scalar payload of a share. It stands in for a field
// element; combiners interpret it.
type ShareData uint64

// Share is one witness's contribution toward a threshold signature.
// Shares are produced outside the kernels and only ever read by them.
type Share struct {
	SID     SessionID `json:"sid"`
	Round   Round     `json:"round"`
	Witness WitnessID `json:"witness"`
	Data    ShareData `json:"data"`
}

// SameAttempt reports whether two shares belong to the same (sid, round).
func (s Share) SameAttempt(other Share) bool {
	return s.SID == other.SID && s.Round == other.Round
}

// Signature is the combined result of a successful aggregation.
// Absence of a signature is expressed by the caller's ok flag, never by
// a sentinel Value.
type Signature struct {
	Value uint64 `json:"value"`
}

// CapRequirement is the capability level a step demands.
// The zero value is CapNone. Ordering follows declaration order:
// CapNone < CapRead < CapWrite.
type CapRequirement int

const (
	CapNone CapRequirement = iota
	CapRead
	CapWrite
)

var capNames = [...]string{"none", "read", "write"}

// String returns the lower-case capability name.
func (c CapRequirement) String() string {
	if c < CapNone || c > CapWrite {
		return fmt.Sprintf("CapRequirement(%d)", int(c))
	}
	return capNames[c]
}

// Valid reports whether c is one of the three declared levels.
func (c CapRequirement) Valid() bool {
	return c >= CapNone && c <= CapWrite
}

// Compare orders two requirements by ordinal: -1, 0 or +1.
func (c CapRequirement) Compare(other CapRequirement) int {
	switch {
	case c < other:
		return -1
	case c > other:
		return 1
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c CapRequirement) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid capability requirement %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CapRequirement) UnmarshalText(text []byte) error {
	parsed, err := ParseCapRequirement(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCapRequirement parses "none", "read" or "write" (case-insensitive).
func ParseCapRequirement(s string) (CapRequirement, error) {
	for i, name := range capNames {
		if strings.EqualFold(s, name) {
			return CapRequirement(i), nil
		}
	}
	return CapNone, fmt.Errorf("unknown capability requirement %q: must be one of %v", s, capNames)
}

// Step is one unit of an effect chain.
type Step struct {
	FlowCost uint64         `json:"flow_cost"`
	CapReq   CapRequirement `json:"cap_req"`
}

// Snapshot is an effect chain in execution order.
type Snapshot struct {
	Steps []Step `json:"steps"`
}

// EffectCommand is the charged cost of a Snapshot.
type EffectCommand struct {
	TotalCost uint64 `json:"total_cost"`
}

// FactID identifies a fact. Two facts are the same fact iff their IDs match.
type FactID string

// Fact is a journal entry. Payload is carried along but never consulted
// when deciding whether two facts are equal.
type Fact struct {
	ID      FactID   `json:"id"`
	Payload IRObject `json:"payload,omitempty"`
}

// Equal reports identity equality.
func (f Fact) Equal(other Fact) bool {
	return f.ID == other.ID
}

// NewFact creates a payload-less fact.
func NewFact(id FactID) Fact {
	return Fact{ID: id}
}

// Journal is one replica's view of the fact set, in local order.
type Journal []Fact

// TimeStamp is a two-component hybrid logical clock reading.
// Logical is the causal counter; OrderClock breaks ties.
type TimeStamp struct {
	Logical    uint64 `json:"logical"`
	OrderClock uint64 `json:"order_clock"`
}

// String renders the timestamp as "logical:order".
func (ts TimeStamp) String() string {
	return fmt.Sprintf("%d:%d", ts.Logical, ts.OrderClock)
}

// Policy selects which timestamp components take part in comparison.
type Policy struct {
	IgnorePhysical bool `json:"ignore_physical"`
}

// Ordering is the result of a three-way comparison.
// Ordinals are fixed: Lt=0, Eq=1, Gt=2.
type Ordering int

const (
	Lt Ordering = iota
	Eq
	Gt
)

var orderingNames = [...]string{"lt", "eq", "gt"}

// String returns "lt", "eq" or "gt".
func (o Ordering) String() string {
	if o < Lt || o > Gt {
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
	return orderingNames[o]
}

// Reverse swaps Lt and Gt.
func (o Ordering) Reverse() Ordering {
	switch o {
	case Lt:
		return Gt
	case Gt:
		return Lt
	default:
		return o
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Ordering) MarshalText() ([]byte, error) {
	if o < Lt || o > Gt {
		return nil, fmt.Errorf("invalid ordering %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Ordering) UnmarshalText(text []byte) error {
	parsed, err := ParseOrdering(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOrdering parses "lt", "eq" or "gt" (case-insensitive).
func ParseOrdering(s string) (Ordering, error) {
	for i, name := range orderingNames {
		if strings.EqualFold(s, name) {
			return Ordering(i), nil
		}
	}
	return Eq, fmt.Errorf("unknown ordering %q: must be one of %v", s, orderingNames)
}
