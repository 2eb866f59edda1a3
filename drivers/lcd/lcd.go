// Package lcd drives a 20x4 character HD44780 LCD wired through an
// MCP23008 I²C GPIO expander. Faithful re-implementation of the
// original driver's write sequence; treated as an opaque synchronous
// peripheral by every caller (spec §1, §4.5).
package lcd

import (
	"context"

	"tinygo.org/x/drivers"
)

const (
	cols     = 20
	rows     = 4
	maxChars = cols * rows

	// MCP23008 register addresses used to drive the HD44780 in 4-bit
	// mode: IODIR configures every pin as output, GPIO is the single
	// register toggled to pulse the LCD's enable line.
	mcp23008IODIR = 0x00
	mcp23008GPIO  = 0x09

	// Bit layout on the expander's GPIO port, matching the common
	// PCF8574/MCP23008 HD44780 backpack wiring: RS, RW, EN, backlight
	// on the low nibble's control bits, data nibble on the high bits.
	bitRS        = 1 << 0
	bitEnable    = 1 << 2
	bitBacklight = 1 << 3
)

// Driver is a single HD44780 bound to one MCP23008 address.
type Driver struct {
	i2c       drivers.I2C
	addr      uint16
	backlight bool
}

// New returns a driver bound to addr on i2c. It performs no I/O; call
// Initialize before use.
func New(i2c drivers.I2C, addr uint16) *Driver {
	return &Driver{i2c: i2c, addr: addr, backlight: true}
}

func (d *Driver) writeGPIO(bits byte) error {
	return d.i2c.Tx(d.addr, []byte{mcp23008GPIO, bits}, nil)
}

func (d *Driver) pulseNibble(nibble byte, rs bool) error {
	bits := (nibble << 4)
	if rs {
		bits |= bitRS
	}
	if d.backlight {
		bits |= bitBacklight
	}
	if err := d.writeGPIO(bits | bitEnable); err != nil {
		return err
	}
	return d.writeGPIO(bits)
}

func (d *Driver) writeByte(b byte, rs bool) error {
	if err := d.pulseNibble(b>>4, rs); err != nil {
		return err
	}
	return d.pulseNibble(b&0x0F, rs)
}

func (d *Driver) writeCmd(b byte) error  { return d.writeByte(b, false) }
func (d *Driver) writeChar(b byte) error { return d.writeByte(b, true) }

// HD44780 instruction set, 4-bit interface.
const (
	cmdClear       = 0x01
	cmdEntryMode   = 0x06
	cmdDisplayOn   = 0x0F // display on, cursor on, blink on
	cmdFunctionSet = 0x28 // 4-bit, 2-line, 5x8 font
	cmdSetDDRAM    = 0x80
)

// Initialize configures the MCP23008 expander as an all-output port and
// resets the LCD controller into 4-bit, 2-line mode with the cursor and
// blink visible, matching the original driver's reset sequence.
func (d *Driver) Initialize() error {
	if err := d.i2c.Tx(d.addr, []byte{mcp23008IODIR, 0x00}, nil); err != nil {
		return err
	}
	for _, cmd := range []byte{cmdFunctionSet, cmdDisplayOn, cmdEntryMode, cmdClear} {
		if err := d.writeCmd(cmd); err != nil {
			return err
		}
	}
	return nil
}

// SetBacklight turns the LCD's backlight on or off. The new state is
// written to the expander immediately and kept on every later write.
func (d *Driver) SetBacklight(on bool) error {
	d.backlight = on
	var bits byte
	if on {
		bits = bitBacklight
	}
	return d.writeGPIO(bits)
}

// ddramAddr returns the DDRAM address of column c on display row r, per
// the standard HD44780 two-controller-row addressing scheme used by
// 20x4 displays (rows 0/2 share one internal row, rows 1/3 the other,
// offset by 20).
func ddramAddr(row, col int) byte {
	rowOffsets := [4]byte{0x00, 0x40, 0x14, 0x54}
	return rowOffsets[row] + byte(col)
}

// WriteString clears the display and writes s starting at row 0,
// repositioning the cursor every 20 characters to wrap onto the next
// display row. Non-ASCII bytes are silently skipped. Text beyond
// maxChars (80) characters is truncated and truncated is reported true.
func (d *Driver) WriteString(s string) (truncated bool, err error) {
	if err := d.writeCmd(cmdClear); err != nil {
		return false, err
	}
	if err := d.writeCmd(cmdSetDDRAM | ddramAddr(0, 0)); err != nil {
		return false, err
	}

	i := 0
	for _, r := range s {
		if r > 0x7F {
			continue
		}
		if i == maxChars {
			truncated = true
			break
		}
		if i != 0 && i%cols == 0 {
			row := i / cols
			if err := d.writeCmd(cmdSetDDRAM | ddramAddr(row, 0)); err != nil {
				return truncated, err
			}
		}
		if err := d.writeChar(byte(r)); err != nil {
			return truncated, err
		}
		i++
	}

	return truncated, nil
}

// Close turns the backlight off before the process exits. Best-effort:
// the bus may already be going away, so callers log rather than fail
// shutdown on its error.
func (d *Driver) Close(ctx context.Context) error {
	return d.SetBacklight(false)
}
