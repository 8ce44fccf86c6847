package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/auramodel/internal/ir"
)

// marshalPayload converts a fact payload to canonical JSON TEXT.
// A nil payload is stored as "", an empty one as "{}".
func marshalPayload(payload ir.IRObject) (string, error) {
	if payload == nil {
		return "", nil
	}
	data, err := ir.MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses canonical JSON TEXT. "" yields nil.
func unmarshalPayload(data string) (ir.IRObject, error) {
	if data == "" {
		return nil, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return obj, nil
}
