package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyDeterministic(t *testing.T) {
	fields := []FieldSpec{{Name: "num", Kind: "u8"}, {Name: "color", Kind: "enum:Off,Green,Red,Yellow"}}

	k1 := ComputeKey("led/set", fields)
	k2 := ComputeKey("led/set", fields)
	require.Equal(t, k1, k2, "same (path, schema) must yield the same key across independent calls")
}

func TestKeyChangesWithFieldName(t *testing.T) {
	a := ComputeKey("led/set", []FieldSpec{{Name: "num", Kind: "u8"}})
	b := ComputeKey("led/set", []FieldSpec{{Name: "led_num", Kind: "u8"}})
	require.NotEqual(t, a, b)
}

func TestKeyChangesWithPath(t *testing.T) {
	fields := []FieldSpec{{Name: "num", Kind: "u8"}}
	a := ComputeKey("led/set", fields)
	b := ComputeKey("led/notify", fields)
	require.NotEqual(t, a, b)
}
