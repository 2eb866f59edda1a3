// Package proto defines the request/response payload types for every
// endpoint this daemon exposes, and their wire encoding on top of the
// wbnotifier/wire codec primitives.
package proto

import (
	"fmt"

	"wbnotifier/wire"
)

// LedColor is one of the four states a logical LED can be painted.
type LedColor uint8

const (
	Off LedColor = iota
	Green
	Red
	Yellow
)

func (c LedColor) String() string {
	switch c {
	case Off:
		return "Off"
	case Green:
		return "Green"
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	default:
		return fmt.Sprintf("LedColor(%d)", uint8(c))
	}
}

func (c LedColor) valid() bool { return c <= Yellow }

const ledColorEnum = "enum:Off,Green,Red,Yellow"

func putLedColor(b []byte, c LedColor) []byte { return wire.PutByte(b, byte(c)) }

func getLedColor(b []byte) (LedColor, []byte, error) {
	v, rest, err := wire.Byte(b)
	if err != nil {
		return 0, nil, err
	}
	c := LedColor(v)
	if !c.valid() {
		return 0, nil, fmt.Errorf("proto: invalid LedColor %d", v)
	}
	return c, rest, nil
}

// Status is a notification's severity, which projects onto a LedColor.
type Status uint8

const (
	StatusOk Status = iota
	StatusWarning
	StatusError
)

const statusEnum = "enum:Ok,Warning,Error"

// Color projects a notification status onto the LED color it paints.
func (s Status) Color() LedColor {
	switch s {
	case StatusWarning:
		return Yellow
	case StatusError:
		return Red
	default:
		return Green
	}
}

func (s Status) valid() bool { return s <= StatusError }

func putStatus(b []byte, s Status) []byte { return wire.PutByte(b, byte(s)) }

func getStatus(b []byte) (Status, []byte, error) {
	v, rest, err := wire.Byte(b)
	if err != nil {
		return 0, nil, err
	}
	s := Status(v)
	if !s.valid() {
		return 0, nil, fmt.Errorf("proto: invalid Status %d", v)
	}
	return s, rest, nil
}

// Dimming selects the bargraph's brightness.
type Dimming uint8

const (
	DimLo Dimming = iota
	DimHi
)

const dimmingEnum = "enum:Lo,Hi"

func putDimming(b []byte, d Dimming) []byte { return wire.PutByte(b, byte(d)) }

func getDimming(b []byte) (Dimming, []byte, error) {
	v, rest, err := wire.Byte(b)
	if err != nil {
		return 0, nil, err
	}
	if v > byte(DimHi) {
		return 0, nil, fmt.Errorf("proto: invalid Dimming %d", v)
	}
	return Dimming(v), rest, nil
}

// Backlight toggles the LCD's backlight.
type Backlight uint8

const (
	BacklightOn Backlight = iota
	BacklightOff
)

const backlightEnum = "enum:On,Off"

func putBacklight(b []byte, v Backlight) []byte { return wire.PutByte(b, byte(v)) }

func getBacklight(b []byte) (Backlight, []byte, error) {
	v, rest, err := wire.Byte(b)
	if err != nil {
		return 0, nil, err
	}
	if v > byte(BacklightOff) {
		return 0, nil, fmt.Errorf("proto: invalid Backlight %d", v)
	}
	return Backlight(v), rest, nil
}

// SendMsgResult is the successful outcome of a SendMsg call: either the
// whole message fit, or it was Truncated because it held more than 80
// ASCII characters and only the first 80 were written.
type SendMsgResult uint8

const (
	SendMsgOk SendMsgResult = iota
	SendMsgTruncated
)
