package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/auramodel/internal/ir"
)

// parseShare parses "sid:round:witness:data".
func parseShare(s string) (ir.Share, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return ir.Share{}, fmt.Errorf("share %q: want sid:round:witness:data", s)
	}
	vals, err := parseUints(s, parts)
	if err != nil {
		return ir.Share{}, err
	}
	return ir.Share{
		SID:     ir.SessionID(vals[0]),
		Round:   ir.Round(vals[1]),
		Witness: ir.WitnessID(vals[2]),
		Data:    ir.ShareData(vals[3]),
	}, nil
}

// parseStep parses "cost" or "cost:cap" where cap is none, read or write.
func parseStep(s string) (ir.Step, error) {
	costText, capText, hasCap := strings.Cut(s, ":")
	cost, err := strconv.ParseUint(costText, 10, 64)
	if err != nil {
		return ir.Step{}, fmt.Errorf("step %q: cost: %w", s, err)
	}
	step := ir.Step{FlowCost: cost, CapReq: ir.CapNone}
	if hasCap {
		req, err := ir.ParseCapRequirement(capText)
		if err != nil {
			return ir.Step{}, fmt.Errorf("step %q: %w", s, err)
		}
		step.CapReq = req
	}
	return step, nil
}

// parseTimeStamp parses "logical:order".
func parseTimeStamp(s string) (ir.TimeStamp, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return ir.TimeStamp{}, fmt.Errorf("timestamp %q: want logical:order", s)
	}
	vals, err := parseUints(s, parts)
	if err != nil {
		return ir.TimeStamp{}, err
	}
	return ir.TimeStamp{Logical: vals[0], OrderClock: vals[1]}, nil
}

func parseUints(input string, parts []string) ([]uint64, error) {
	vals := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: field %d: %w", input, i+1, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// journalArg builds a journal from fact IDs, in order.
func journalArg(ids []string) ir.Journal {
	j := make(ir.Journal, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		j = append(j, ir.NewFact(ir.FactID(id)))
	}
	return j
}

func factIDs(j ir.Journal) []string {
	ids := make([]string, len(j))
	for i, f := range j {
		ids[i] = string(f.ID)
	}
	return ids
}
