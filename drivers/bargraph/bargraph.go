// Package bargraph drives an HT16K33-backed 24-LED bi-color bargraph
// over I²C. Faithful re-implementation of the original driver's
// row/column mapping and command sequence; treated as an opaque
// synchronous peripheral by every caller (spec §1, §4.5). While the
// server is serving, its methods run only inside blocking-offload
// closures; wbnotifierd calls Initialize at startup and Close at
// shutdown directly on its main goroutine.
package bargraph

import (
	"context"
	"errors"
	"fmt"

	"tinygo.org/x/drivers"

	"wbnotifier/proto"
)

const (
	cmdSystemSetup   = 0x20
	oscillatorOn     = 0x01
	cmdDisplaySetup  = 0x80
	displayOn        = 0x01
	cmdDimming       = 0xE0
	cmdDisplayRAM    = 0x00
	rowCount         = 16
	bytesPerRow      = 2
	displayBufferLen = rowCount * bytesPerRow
)

// DisplayMode selects the HT16K33's display-on/blink-rate bits, used by
// the notification blinker to drive the whole bargraph's blink cadence.
type DisplayMode uint8

const (
	DisplayOff DisplayMode = iota
	DisplaySteady
	DisplayBlink2Hz
	DisplayBlink1Hz
	DisplayBlinkHalfHz
)

func (m DisplayMode) blinkBits() byte {
	switch m {
	case DisplayBlink2Hz:
		return 0x01 << 1
	case DisplayBlink1Hz:
		return 0x02 << 1
	case DisplayBlinkHalfHz:
		return 0x03 << 1
	default:
		return 0x00
	}
}

func (m DisplayMode) displayBit() byte {
	if m == DisplayOff {
		return 0
	}
	return displayOn
}

// ErrOutOfRange is returned by SetLedNo for num > 23.
var ErrOutOfRange = errors.New("bargraph: led number out of range [0,23]")

// Driver is a single HT16K33 bargraph bound to one I²C address. It keeps
// a shadow of the controller's display RAM so SetLedNo only needs to
// flip two bits and rewrite the buffer, never read back from the part.
type Driver struct {
	i2c  drivers.I2C
	addr uint16
	buf  [displayBufferLen]byte
}

// New returns a driver bound to addr on i2c. It performs no I/O; call
// Initialize before use.
func New(i2c drivers.I2C, addr uint16) *Driver {
	return &Driver{i2c: i2c, addr: addr}
}

func (d *Driver) writeCmd(b byte) error {
	return d.i2c.Tx(d.addr, []byte{b}, nil)
}

// Initialize turns on the HT16K33's internal oscillator and enables a
// steady (non-blinking) display.
func (d *Driver) Initialize() error {
	if err := d.writeCmd(cmdSystemSetup | oscillatorOn); err != nil {
		return fmt.Errorf("bargraph: oscillator on: %w", err)
	}
	if err := d.SetDisplay(DisplaySteady); err != nil {
		return err
	}
	return d.writeDisplayBuffer()
}

func (d *Driver) writeDisplayBuffer() error {
	w := make([]byte, 1+displayBufferLen)
	w[0] = cmdDisplayRAM
	copy(w[1:], d.buf[:])
	return d.i2c.Tx(d.addr, w, nil)
}

// cellOffset returns the (byte index, bit mask) of LED location
// (row, col) within the 16-row, 16-column-wide display RAM shadow.
func cellOffset(row, col uint8) (int, byte) {
	byteIdx := int(row)*bytesPerRow + int(col)/8
	bit := byte(1) << (col % 8)
	return byteIdx, bit
}

// SetLedNo paints logical LED num (0..23) the given color. Row/column
// mapping found via trial and error against the physical board: row =
// (num mod 4) + (4 if num>=12 else 0), col = (num div 4) mod 3; the
// green cell for the same LED sits eight rows below the red one.
func (d *Driver) SetLedNo(num uint8, color proto.LedColor) error {
	if num > 23 {
		return ErrOutOfRange
	}

	row := num % 4
	if num >= 12 {
		row += 4
	}
	col := (num / 4) % 3

	redIdx, redBit := cellOffset(row, col)
	greenIdx, greenBit := cellOffset(row+8, col)

	d.buf[redIdx] &^= redBit
	d.buf[greenIdx] &^= greenBit

	if color == proto.Red || color == proto.Yellow {
		d.buf[redIdx] |= redBit
	}
	if color == proto.Green || color == proto.Yellow {
		d.buf[greenIdx] |= greenBit
	}

	return d.writeDisplayBuffer()
}

// SetDimming sets the bargraph's global brightness.
func (d *Driver) SetDimming(dim proto.Dimming) error {
	var level byte
	if dim == proto.DimHi {
		level = 15
	} else {
		level = 2
	}
	return d.writeCmd(cmdDimming | level)
}

// SetDisplay sets the display-on and blink-rate bits used by the
// notification blinker state machine.
func (d *Driver) SetDisplay(mode DisplayMode) error {
	return d.writeCmd(cmdDisplaySetup | mode.displayBit() | mode.blinkBits())
}

// Close turns the display off before the process exits. Best-effort:
// the bus may already be going away, so callers log rather than fail
// shutdown on its error. Mirrors the original driver's free().
func (d *Driver) Close(ctx context.Context) error {
	return d.SetDisplay(DisplayOff)
}
