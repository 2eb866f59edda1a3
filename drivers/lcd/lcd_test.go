package lcd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeI2C struct {
	writes [][]byte
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	cp := append([]byte(nil), w...)
	f.writes = append(f.writes, cp)
	return nil
}

func TestWriteStringWrapsAtTwentyChars(t *testing.T) {
	f := &fakeI2C{}
	d := New(f, 0x20)
	require.NoError(t, d.Initialize())

	before := len(f.writes)
	truncated, err := d.WriteString(strings.Repeat("a", 20) + "bcdef")
	require.NoError(t, err)
	require.False(t, truncated)
	// clear + set-ddram, 25 chars, and one cursor reposition to row 1
	// (4 GPIO writes each). The reposition comes right after char 20 and
	// its first write carries the high nibble of 0x80|0x40 with enable set.
	require.Equal(t, 4*2+4*25+4, len(f.writes)-before)
	require.Equal(t, []byte{mcp23008GPIO, 0xC0 | bitBacklight | bitEnable}, f.writes[before+4*2+4*20])
}

func TestWriteStringSkipsNonASCII(t *testing.T) {
	f := &fakeI2C{}
	d := New(f, 0x20)
	require.NoError(t, d.Initialize())

	before := len(f.writes)
	_, err := d.WriteString("aéb")
	require.NoError(t, err)
	// clear + set-ddram (4 GPIO writes each) plus two ASCII chars (4 GPIO
	// writes each); the non-ASCII rune contributes none.
	require.Equal(t, 4*2+4*2, len(f.writes)-before)
}

func TestWriteStringTruncatesOverEighty(t *testing.T) {
	f := &fakeI2C{}
	d := New(f, 0x20)
	require.NoError(t, d.Initialize())

	truncated, err := d.WriteString(strings.Repeat("x", 81))
	require.NoError(t, err)
	require.True(t, truncated)
}
