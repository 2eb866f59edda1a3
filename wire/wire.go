// Package wire implements the daemon's compact binary codec: unsigned
// varints, booleans, length-prefixed strings/bytes, and the 12-byte
// seq_no+key datagram header every request and response carries.
//
// The codec is schema-directed rather than self-describing: callers
// know the shape of what they're reading and call the matching Put/Get
// pair in order. There is no tag byte per field, matching the compact
// wire format described for this RPC.
package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrShortBuffer is returned when a Get* call needs more bytes than remain.
var ErrShortBuffer = errors.New("wire: short buffer")

// ErrShortDatagram is returned by DecodeHeader for inputs under HeaderSize.
var ErrShortDatagram = errors.New("wire: datagram shorter than header")

// PutVarint appends an unsigned varint (7 bits per byte, continuation bit,
// little-endian group order) to b.
func PutVarint(b []byte, v uint64) []byte {
	return protowire.AppendVarint(b, v)
}

// Varint reads an unsigned varint from the front of b, returning the
// decoded value and the remaining bytes.
func Varint(b []byte) (v uint64, rest []byte, err error) {
	val, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, nil, fmt.Errorf("wire: %w", ErrShortBuffer)
	}
	return val, b[n:], nil
}

// PutBool appends a single-byte boolean.
func PutBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}

// Bool reads a single-byte boolean from the front of b.
func Bool(b []byte) (v bool, rest []byte, err error) {
	if len(b) < 1 {
		return false, nil, ErrShortBuffer
	}
	return b[0] != 0, b[1:], nil
}

// PutByte appends a single raw byte (used for small fixed enums/u8 fields).
func PutByte(b []byte, v byte) []byte {
	return append(b, v)
}

// Byte reads a single raw byte from the front of b.
func Byte(b []byte) (v byte, rest []byte, err error) {
	if len(b) < 1 {
		return 0, nil, ErrShortBuffer
	}
	return b[0], b[1:], nil
}

// PutBytesLP appends a varint-length-prefixed byte sequence.
func PutBytesLP(b []byte, v []byte) []byte {
	b = PutVarint(b, uint64(len(v)))
	return append(b, v...)
}

// BytesLP reads a varint-length-prefixed byte sequence from the front of b.
func BytesLP(b []byte) (v []byte, rest []byte, err error) {
	n, rest, err := Varint(b)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(rest)) < n {
		return nil, nil, ErrShortBuffer
	}
	return rest[:n], rest[n:], nil
}

// PutString appends a varint-length-prefixed UTF-8 string.
func PutString(b []byte, s string) []byte {
	return PutBytesLP(b, []byte(s))
}

// String reads a varint-length-prefixed UTF-8 string from the front of b.
func String(b []byte) (s string, rest []byte, err error) {
	raw, rest, err := BytesLP(b)
	if err != nil {
		return "", nil, err
	}
	return string(raw), rest, nil
}

// PutOptionalByte appends a tagged-union encoding of an optional u8 field:
// a one-byte present/absent discriminant followed by the value if present.
func PutOptionalByte(b []byte, v *uint8) []byte {
	if v == nil {
		return PutBool(b, false)
	}
	b = PutBool(b, true)
	return PutByte(b, *v)
}

// OptionalByte reads the encoding produced by PutOptionalByte.
func OptionalByte(b []byte) (v *uint8, rest []byte, err error) {
	present, rest, err := Bool(b)
	if err != nil {
		return nil, nil, err
	}
	if !present {
		return nil, rest, nil
	}
	val, rest, err := Byte(rest)
	if err != nil {
		return nil, nil, err
	}
	return &val, rest, nil
}

// KeySize is the width, in bytes, of an endpoint key.
const KeySize = 8

// HeaderSize is the width, in bytes, of the framing every datagram carries
// before its payload: a 4-byte little-endian seq_no followed by an 8-byte
// key.
const HeaderSize = 4 + KeySize

// Header is the fixed framing prefix of every request and response
// datagram.
type Header struct {
	SeqNo uint32
	Key   [KeySize]byte
}

// Encode appends the header's 12-byte wire representation to b.
func (h Header) Encode(b []byte) []byte {
	b = append(b,
		byte(h.SeqNo), byte(h.SeqNo>>8), byte(h.SeqNo>>16), byte(h.SeqNo>>24),
	)
	return append(b, h.Key[:]...)
}

// DecodeHeader extracts the header from the front of a datagram, returning
// the header and the residual payload bytes. It rejects datagrams shorter
// than HeaderSize, per the wire codec's framing contract.
func DecodeHeader(b []byte) (h Header, payload []byte, err error) {
	if len(b) < HeaderSize {
		return Header{}, nil, ErrShortDatagram
	}
	h.SeqNo = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	copy(h.Key[:], b[4:HeaderSize])
	return h, b[HeaderSize:], nil
}
