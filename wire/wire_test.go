package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{SeqNo: 0, Key: [8]byte{}},
		{SeqNo: 1, Key: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{SeqNo: 0xFFFFFFFF, Key: [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	payload := []byte("hello world")

	for _, h := range cases {
		buf := h.Encode(nil)
		buf = append(buf, payload...)

		got, rest, err := DecodeHeader(buf)
		require.NoError(t, err)
		require.Equal(t, h, got)
		require.Equal(t, payload, rest)
	}
}

func TestDecodeHeaderShort(t *testing.T) {
	_, _, err := DecodeHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, ErrShortDatagram)
}

func TestVarintRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40} {
		buf := PutVarint(nil, v)
		got, rest, err := Varint(buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Empty(t, rest)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hello!", "日本語bytes skipped upstream"} {
		buf := PutString(nil, s)
		got, rest, err := String(buf)
		require.NoError(t, err)
		require.Equal(t, s, got)
		require.Empty(t, rest)
	}
}

func TestOptionalByteRoundTrip(t *testing.T) {
	buf := PutOptionalByte(nil, nil)
	v, rest, err := OptionalByte(buf)
	require.NoError(t, err)
	require.Nil(t, v)
	require.Empty(t, rest)

	n := uint8(7)
	buf = PutOptionalByte(nil, &n)
	v, rest, err = OptionalByte(buf)
	require.NoError(t, err)
	require.NotNil(t, v)
	require.Equal(t, n, *v)
	require.Empty(t, rest)
}
