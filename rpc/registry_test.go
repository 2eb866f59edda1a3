package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wbnotifier/wire"
)

type testCtx struct{ seen *[]string }

func TestRegistryRejectsDuplicatePath(t *testing.T) {
	r := NewRegistry[testCtx]()
	ep := Endpoint{Path: "debug/echo", Fields: []FieldSpec{{Name: "msg", Kind: "string"}}}
	noop := Handler[testCtx](func(wire.Header, testCtx, []byte) {})

	require.NoError(t, r.Register(ep, noop))
	err := r.Register(ep, noop)
	require.Error(t, err)
}

func TestRegistryRejectsOverCapacity(t *testing.T) {
	r := NewRegistry[testCtx]()
	noop := Handler[testCtx](func(wire.Header, testCtx, []byte) {})
	for i := 0; i < MaxEndpoints; i++ {
		ep := Endpoint{Path: string(rune('a' + i)), Fields: nil}
		require.NoError(t, r.Register(ep, noop))
	}
	err := r.Register(Endpoint{Path: "overflow"}, noop)
	require.Error(t, err)
}

func TestRegistryFrozenRejectsRegister(t *testing.T) {
	r := NewRegistry[testCtx]()
	r.Freeze()
	err := r.Register(Endpoint{Path: "debug/echo"}, func(wire.Header, testCtx, []byte) {})
	require.Error(t, err)
}

func TestDispatchNoMatch(t *testing.T) {
	r := NewRegistry[testCtx]()
	r.Freeze()

	var hdr wire.Header
	datagram := hdr.Encode(nil)

	seen := []string{}
	err := r.Dispatch(datagram, testCtx{seen: &seen})
	var nomatch *NoMatchError
	require.ErrorAs(t, err, &nomatch)
}

func TestDispatchInvokesHandler(t *testing.T) {
	r := NewRegistry[testCtx]()
	ep := Endpoint{Path: "debug/echo", Fields: []FieldSpec{{Name: "msg", Kind: "string"}}}
	called := false
	require.NoError(t, r.Register(ep, func(hdr wire.Header, ctx testCtx, payload []byte) {
		called = true
		require.Equal(t, uint32(42), hdr.SeqNo)
	}))
	r.Freeze()

	hdr := wire.Header{SeqNo: 42, Key: ep.Key()}
	datagram := hdr.Encode(nil)
	datagram = wire.PutString(datagram, "hi")

	require.NoError(t, r.Dispatch(datagram, testCtx{}))
	require.True(t, called)
}
