package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRObjectJSONRoundTrip(t *testing.T) {
	obj := IRObject{
		"name":  IRString("replica-a"),
		"count": IRInt(3),
		"tags":  IRArray{IRString("x"), IRBool(true)},
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"count":3,"name":"replica-a","tags":["x",true]}`, string(data))

	var back IRObject
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, obj, back)
}

func TestUnmarshalIRValueRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"float", `1.5`},
		{"exponent", `1e3`},
		{"null", `null`},
		{"nested null", `{"a":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalIRValue([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestFromAnyYAMLShapes(t *testing.T) {
	v, err := FromAny(map[string]any{"n": 1, "big": uint64(7), "list": []any{"a", int64(2)}})
	require.NoError(t, err)
	assert.Equal(t, IRObject{"n": IRInt(1), "big": IRInt(7), "list": IRArray{IRString("a"), IRInt(2)}}, v)

	_, err = FromAny(uint64(1 << 63))
	assert.Error(t, err)
}
