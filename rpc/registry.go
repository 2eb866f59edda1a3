// Package rpc implements the endpoint registry and dispatch table: a
// fixed-capacity map from a computed 64-bit Key to a registered Handler,
// frozen once the server starts serving.
package rpc

import (
	"fmt"

	"golang.org/x/exp/slices"

	"wbnotifier/errcode"
	"wbnotifier/wire"
)

// MaxEndpoints bounds the dispatch table's capacity.
const MaxEndpoints = 16

// Endpoint is a static descriptor binding a path to a request schema.
type Endpoint struct {
	Path   string
	Fields []FieldSpec
}

// Key derives this endpoint's dispatch key.
func (e Endpoint) Key() Key { return ComputeKey(e.Path, e.Fields) }

// Handler is invoked with the decoded header, a caller-supplied context
// value, and the request's residual (post-header) payload bytes. C is
// fixed per Registry instance so handlers never need to type-assert a
// boxed context value — there is no type erasure at the dispatch
// boundary (see the design notes on avoiding an erased-type box).
type Handler[C any] func(hdr wire.Header, ctx C, payload []byte)

type entry[C any] struct {
	endpoint Endpoint
	handler  Handler[C]
}

// Registry is the key -> handler dispatch table. It is built up via
// Register calls at startup and then Frozen; Dispatch is safe to call
// concurrently with itself (read-only) but never concurrently with
// Register.
type Registry[C any] struct {
	entries map[Key]entry[C]
	paths   []string
	frozen  bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{entries: make(map[Key]entry[C], MaxEndpoints)}
}

// Register adds (key, handler) to the table. It fails with
// errcode.DuplicateKey if the endpoint's key collides with one already
// registered (or its path was already registered under a different
// schema), errcode.TableFull once MaxEndpoints entries are present, and
// errcode.Busy if the registry has already been frozen.
func (r *Registry[C]) Register(ep Endpoint, h Handler[C]) error {
	if r.frozen {
		return &errcode.E{C: errcode.Busy, Op: "rpc.Register", Msg: "registry already frozen"}
	}
	if len(r.entries) >= MaxEndpoints {
		return &errcode.E{C: errcode.TableFull, Op: "rpc.Register", Msg: fmt.Sprintf("capacity %d exceeded", MaxEndpoints)}
	}
	if slices.Contains(r.paths, ep.Path) {
		return &errcode.E{C: errcode.DuplicateKey, Op: "rpc.Register", Msg: ep.Path}
	}
	k := ep.Key()
	if _, exists := r.entries[k]; exists {
		return &errcode.E{C: errcode.DuplicateKey, Op: "rpc.Register", Msg: ep.Path}
	}
	r.entries[k] = entry[C]{endpoint: ep, handler: h}
	r.paths = append(r.paths, ep.Path)
	return nil
}

// Freeze closes the table to further registration. The dispatch table is
// frozen after startup for the lifetime of the daemon.
func (r *Registry[C]) Freeze() { r.frozen = true }

// NoMatchError is returned by Dispatch when no endpoint matches the
// datagram's key. No reply is ever emitted for a NoMatchError.
type NoMatchError struct {
	SeqNo uint32
	Key   Key
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("rpc: no endpoint for key %x (seq_no=%d)", e.Key, e.SeqNo)
}

// Dispatch extracts the header from a datagram's bytes, looks up the
// matching handler by key, and invokes it with the residual payload. It
// returns a *NoMatchError if no entry matches; the caller logs and moves
// on (spec §7: "logged, no reply emitted").
func (r *Registry[C]) Dispatch(datagram []byte, ctx C) error {
	hdr, payload, err := wire.DecodeHeader(datagram)
	if err != nil {
		return err
	}
	e, ok := r.entries[hdr.Key]
	if !ok {
		return &NoMatchError{SeqNo: hdr.SeqNo, Key: hdr.Key}
	}
	e.handler(hdr, ctx, payload)
	return nil
}

// Len reports how many endpoints are currently registered.
func (r *Registry[C]) Len() int { return len(r.entries) }
