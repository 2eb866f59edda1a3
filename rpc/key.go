package rpc

import (
	"golang.org/x/crypto/blake2b"

	"wbnotifier/wire"
)

// Key is the 64-bit opaque identifier that associates a datagram with an
// endpoint. It is computed deterministically from an endpoint's path and
// its request type's schema shape, so it is identical on client and
// server as long as both were built from the same type definitions.
type Key [wire.KeySize]byte

// FieldSpec names one field of a request's schema tree, in declaration
// order. Kind is a short, stable tag: "u8", "u32", "bool", "string",
// "optional<u8>", or "enum:A,B,C" for a tagged union/enum whose variant
// names matter to the fingerprint (changing a variant name must change
// the resulting key just as changing a field name does).
type FieldSpec struct {
	Name string
	Kind string
}

// SchemaFingerprint deterministically encodes a request type's shape:
// its field names, kinds, and order. Two types with the same fields in
// the same order produce the same fingerprint; renaming, reordering, or
// retyping any field changes it.
func SchemaFingerprint(fields []FieldSpec) []byte {
	var buf []byte
	buf = wire.PutVarint(buf, uint64(len(fields)))
	for _, f := range fields {
		buf = wire.PutString(buf, f.Name)
		buf = wire.PutString(buf, f.Kind)
	}
	return buf
}

// ComputeKey derives the stable 64-bit endpoint key from a path string and
// a request schema fingerprint: blake2b-256(path || 0x00 || fingerprint),
// truncated to the low 8 bytes.
func ComputeKey(path string, fields []FieldSpec) Key {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on an oversized key, and we pass
		// no key at all; this branch is unreachable in practice.
		panic(err)
	}
	_, _ = h.Write([]byte(path))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(SchemaFingerprint(fields))

	sum := h.Sum(nil)
	var k Key
	copy(k[:], sum[:wire.KeySize])
	return k
}
