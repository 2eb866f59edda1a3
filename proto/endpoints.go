package proto

import (
	"wbnotifier/rpc"
	"wbnotifier/wire"
)

// EchoRequest is the payload for debug/echo: an arbitrary string the
// server returns, uppercased, as its response.
type EchoRequest struct {
	Msg string
}

func (EchoRequest) SchemaFields() []rpc.FieldSpec {
	return []rpc.FieldSpec{{Name: "msg", Kind: "string"}}
}

func (r EchoRequest) Encode(b []byte) []byte { return wire.PutString(b, r.Msg) }

func DecodeEchoRequest(b []byte) (EchoRequest, []byte, error) {
	s, rest, err := wire.String(b)
	if err != nil {
		return EchoRequest{}, nil, err
	}
	return EchoRequest{Msg: s}, rest, nil
}

// EchoResponse carries the uppercased string back. Unlike the mutating
// endpoints it is not wrapped in a Result: debug/echo cannot fail.
type EchoResponse struct {
	Msg string
}

func (r EchoResponse) Encode(b []byte) []byte { return wire.PutString(b, r.Msg) }

func DecodeEchoResponse(b []byte) (EchoResponse, []byte, error) {
	s, rest, err := wire.String(b)
	if err != nil {
		return EchoResponse{}, nil, err
	}
	return EchoResponse{Msg: s}, rest, nil
}

var EchoEndpoint = rpc.Endpoint{Path: "debug/echo", Fields: EchoRequest{}.SchemaFields()}

// SetLedRequest is led/set's payload: paint one of the 24 bargraph LEDs
// a solid color, bypassing notification/ack bookkeeping.
type SetLedRequest struct {
	Num   uint8
	Color LedColor
}

func (SetLedRequest) SchemaFields() []rpc.FieldSpec {
	return []rpc.FieldSpec{
		{Name: "num", Kind: "u8"},
		{Name: "color", Kind: ledColorEnum},
	}
}

func (r SetLedRequest) Encode(b []byte) []byte {
	b = wire.PutByte(b, r.Num)
	return putLedColor(b, r.Color)
}

func DecodeSetLedRequest(b []byte) (SetLedRequest, []byte, error) {
	num, rest, err := wire.Byte(b)
	if err != nil {
		return SetLedRequest{}, nil, err
	}
	color, rest, err := getLedColor(rest)
	if err != nil {
		return SetLedRequest{}, nil, err
	}
	return SetLedRequest{Num: num, Color: color}, rest, nil
}

var SetLedEndpoint = rpc.Endpoint{Path: "led/set", Fields: SetLedRequest{}.SchemaFields()}

func EncodeUnitResult(b []byte, err error) []byte {
	if err != nil {
		return putResultErr[unit](b)
	}
	return putResultOk(b, unit{}, putUnit)
}

func DecodeUnitResult(b []byte) (Result[unit], []byte, error) {
	return getResult(b, getUnit)
}

// SetDimmingRequest is led/dimming's payload: the bargraph's global
// brightness level.
type SetDimmingRequest struct {
	Dimming Dimming
}

func (SetDimmingRequest) SchemaFields() []rpc.FieldSpec {
	return []rpc.FieldSpec{{Name: "dimming", Kind: dimmingEnum}}
}

func (r SetDimmingRequest) Encode(b []byte) []byte { return putDimming(b, r.Dimming) }

func DecodeSetDimmingRequest(b []byte) (SetDimmingRequest, []byte, error) {
	d, rest, err := getDimming(b)
	if err != nil {
		return SetDimmingRequest{}, nil, err
	}
	return SetDimmingRequest{Dimming: d}, rest, nil
}

var SetDimmingEndpoint = rpc.Endpoint{Path: "led/dimming", Fields: SetDimmingRequest{}.SchemaFields()}

// NotifyRequest is led/notify's payload: start (or escalate) a blinking
// notification on one LED at the given severity.
type NotifyRequest struct {
	Num    uint8
	Status Status
}

func (NotifyRequest) SchemaFields() []rpc.FieldSpec {
	return []rpc.FieldSpec{
		{Name: "num", Kind: "u8"},
		{Name: "status", Kind: statusEnum},
	}
}

func (r NotifyRequest) Encode(b []byte) []byte {
	b = wire.PutByte(b, r.Num)
	return putStatus(b, r.Status)
}

func DecodeNotifyRequest(b []byte) (NotifyRequest, []byte, error) {
	num, rest, err := wire.Byte(b)
	if err != nil {
		return NotifyRequest{}, nil, err
	}
	status, rest, err := getStatus(rest)
	if err != nil {
		return NotifyRequest{}, nil, err
	}
	return NotifyRequest{Num: num, Status: status}, rest, nil
}

var NotifyEndpoint = rpc.Endpoint{Path: "led/notify", Fields: NotifyRequest{}.SchemaFields()}

// AckRequest is led/ack's payload: silence one notification (Num
// present) or every active notification (Num absent).
type AckRequest struct {
	Num *uint8
}

func (AckRequest) SchemaFields() []rpc.FieldSpec {
	return []rpc.FieldSpec{{Name: "num", Kind: "optional<u8>"}}
}

func (r AckRequest) Encode(b []byte) []byte { return wire.PutOptionalByte(b, r.Num) }

func DecodeAckRequest(b []byte) (AckRequest, []byte, error) {
	num, rest, err := wire.OptionalByte(b)
	if err != nil {
		return AckRequest{}, nil, err
	}
	return AckRequest{Num: num}, rest, nil
}

var AckEndpoint = rpc.Endpoint{Path: "led/ack", Fields: AckRequest{}.SchemaFields()}

// SetBacklightRequest is lcd/backlight's payload.
type SetBacklightRequest struct {
	Backlight Backlight
}

func (SetBacklightRequest) SchemaFields() []rpc.FieldSpec {
	return []rpc.FieldSpec{{Name: "backlight", Kind: backlightEnum}}
}

func (r SetBacklightRequest) Encode(b []byte) []byte { return putBacklight(b, r.Backlight) }

func DecodeSetBacklightRequest(b []byte) (SetBacklightRequest, []byte, error) {
	v, rest, err := getBacklight(b)
	if err != nil {
		return SetBacklightRequest{}, nil, err
	}
	return SetBacklightRequest{Backlight: v}, rest, nil
}

var SetBacklightEndpoint = rpc.Endpoint{Path: "lcd/backlight", Fields: SetBacklightRequest{}.SchemaFields()}

// SendMsgRequest is lcd/msg's payload: free text written across the
// display's four 20-character rows.
type SendMsgRequest struct {
	Text string
}

func (SendMsgRequest) SchemaFields() []rpc.FieldSpec {
	return []rpc.FieldSpec{{Name: "text", Kind: "string"}}
}

func (r SendMsgRequest) Encode(b []byte) []byte { return wire.PutString(b, r.Text) }

func DecodeSendMsgRequest(b []byte) (SendMsgRequest, []byte, error) {
	s, rest, err := wire.String(b)
	if err != nil {
		return SendMsgRequest{}, nil, err
	}
	return SendMsgRequest{Text: s}, rest, nil
}

var SendMsgEndpoint = rpc.Endpoint{Path: "lcd/msg", Fields: SendMsgRequest{}.SchemaFields()}

func putSendMsgResult(b []byte, v SendMsgResult) []byte { return wire.PutByte(b, byte(v)) }

func getSendMsgResult(b []byte) (SendMsgResult, []byte, error) {
	v, rest, err := wire.Byte(b)
	if err != nil {
		return 0, nil, err
	}
	return SendMsgResult(v), rest, nil
}

func EncodeSendMsgResult(b []byte, result SendMsgResult, err error) []byte {
	if err != nil {
		return putResultErr[SendMsgResult](b)
	}
	return putResultOk(b, result, putSendMsgResult)
}

func DecodeSendMsgResult(b []byte) (Result[SendMsgResult], []byte, error) {
	return getResult(b, getSendMsgResult)
}

// Endpoints lists every descriptor the server registers at startup, in
// registration order.
var Endpoints = []rpc.Endpoint{
	EchoEndpoint,
	SetLedEndpoint,
	SetDimmingEndpoint,
	NotifyEndpoint,
	AckEndpoint,
	SetBacklightEndpoint,
	SendMsgEndpoint,
}
