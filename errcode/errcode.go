package errcode

// Code is a stable, internal error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable). None of these cross the wire; the
// RequestError wire type carries no payload (spec §6/§7), but every
// rejected request is logged with one of these so operators can grep.
const (
	OK              Code = "ok"
	Busy            Code = "busy"
	Unsupported     Code = "unsupported"
	InvalidParams   Code = "invalid_params"
	InvalidPayload  Code = "invalid_payload"
	UnknownEndpoint Code = "unknown_endpoint"
	DuplicateKey    Code = "duplicate_key"
	TableFull       Code = "table_full"
	LEDOutOfRange   Code = "led_out_of_range"
	NoDevice        Code = "no_device"
	Timeout         Code = "timeout"
	Driver          Code = "driver_error"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a stable Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps a low-level driver/transaction error to a Code.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	return Driver
}
