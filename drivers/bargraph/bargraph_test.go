package bargraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wbnotifier/proto"
)

type fakeI2C struct {
	writes [][]byte
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	cp := append([]byte(nil), w...)
	f.writes = append(f.writes, cp)
	return nil
}

func TestSetLedNoRejectsOutOfRange(t *testing.T) {
	f := &fakeI2C{}
	d := New(f, 0x70)
	err := d.SetLedNo(24, proto.Green)
	require.ErrorIs(t, err, ErrOutOfRange)
	require.Empty(t, f.writes, "out-of-range call must never reach the device")
}

func TestSetLedNoMapping(t *testing.T) {
	cases := []struct {
		num                            uint8
		wantRedRow, wantCol            uint8
		wantGreenRow                   uint8
	}{
		{num: 0, wantRedRow: 0, wantCol: 0, wantGreenRow: 8},
		{num: 4, wantRedRow: 0, wantCol: 1, wantGreenRow: 8},
		{num: 8, wantRedRow: 0, wantCol: 2, wantGreenRow: 8},
		{num: 12, wantRedRow: 4, wantCol: 0, wantGreenRow: 12},
		{num: 16, wantRedRow: 4, wantCol: 1, wantGreenRow: 12},
		{num: 20, wantRedRow: 4, wantCol: 2, wantGreenRow: 12},
		{num: 23, wantRedRow: 7, wantCol: 2, wantGreenRow: 15},
	}

	for _, tc := range cases {
		f := &fakeI2C{}
		d := New(f, 0x70)
		require.NoError(t, d.SetLedNo(tc.num, proto.Yellow))

		redIdx, redBit := cellOffset(tc.wantRedRow, tc.wantCol)
		greenIdx, greenBit := cellOffset(tc.wantGreenRow, tc.wantCol)

		require.NotZero(t, d.buf[redIdx]&redBit, "num=%d red cell not set", tc.num)
		require.NotZero(t, d.buf[greenIdx]&greenBit, "num=%d green cell not set", tc.num)
	}
}

func TestSetLedNoOffClearsBothCells(t *testing.T) {
	f := &fakeI2C{}
	d := New(f, 0x70)
	require.NoError(t, d.SetLedNo(0, proto.Yellow))
	require.NoError(t, d.SetLedNo(0, proto.Off))

	redIdx, redBit := cellOffset(0, 0)
	greenIdx, greenBit := cellOffset(8, 0)
	require.Zero(t, d.buf[redIdx]&redBit)
	require.Zero(t, d.buf[greenIdx]&greenBit)
}
