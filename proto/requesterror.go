package proto

import "wbnotifier/wire"

// RequestError signals "the server accepted the request but the driver
// refused it." It carries no payload on the wire (spec §6): only its
// presence as the Err arm of a Result matters.
type RequestError struct{}

// Result is the wire shape every mutating endpoint's response wraps its
// outcome in: a one-byte discriminant (0 = Ok, 1 = Err) followed by the
// Ok payload's own encoding when present. T is the Ok payload type;
// RequestError never carries a payload.
type Result[T any] struct {
	Ok  bool
	Val T // zero value when Ok is false
}

func putResultOk[T any](b []byte, val T, putVal func([]byte, T) []byte) []byte {
	b = wire.PutBool(b, false)
	return putVal(b, val)
}

func putResultErr[T any](b []byte) []byte {
	return wire.PutBool(b, true)
}

func getResult[T any](b []byte, getVal func([]byte) (T, []byte, error)) (Result[T], []byte, error) {
	isErr, rest, err := wire.Bool(b)
	if err != nil {
		return Result[T]{}, nil, err
	}
	if isErr {
		return Result[T]{Ok: false}, rest, nil
	}
	val, rest, err := getVal(rest)
	if err != nil {
		return Result[T]{}, nil, err
	}
	return Result[T]{Ok: true, Val: val}, rest, nil
}

// unit is the Ok payload type for endpoints whose success carries no data.
type unit struct{}

func putUnit(b []byte, _ unit) []byte { return b }
func getUnit(b []byte) (unit, []byte, error) {
	return unit{}, b, nil
}
