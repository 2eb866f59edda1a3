package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wbnotifier/bridge"
	"wbnotifier/devhub"
	"wbnotifier/drivers/bargraph"
	"wbnotifier/proto"
	"wbnotifier/wire"
)

type fakeI2C struct{}

func (fakeI2C) Tx(addr uint16, w, r []byte) error { return nil }

func startTestServer(t *testing.T) *net.UDPAddr {
	t.Helper()

	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	drv := bargraph.New(fakeI2C{}, 0x70)
	require.NoError(t, drv.Initialize())
	handle := devhub.New(drv)

	pool := bridge.NewPool(2)
	s := New(serverConn, pool, Devices{Bargraph: handle}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Loop(ctx)
	t.Cleanup(func() {
		cancel()
		serverConn.Close()
	})

	return serverConn.LocalAddr().(*net.UDPAddr)
}

func roundTrip(t *testing.T, addr *net.UDPAddr, hdr wire.Header, payload []byte) []byte {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))

	datagram := hdr.Encode(nil)
	datagram = append(datagram, payload...)
	_, err = conn.Write(datagram)
	require.NoError(t, err)

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return buf[:n]
}

func TestEchoUppercases(t *testing.T) {
	addr := startTestServer(t)

	hdr := wire.Header{SeqNo: 7, Key: proto.EchoEndpoint.Key()}
	req := proto.EchoRequest{Msg: "hello"}
	resp := roundTrip(t, addr, hdr, req.Encode(nil))

	gotHdr, payload, err := wire.DecodeHeader(resp)
	require.NoError(t, err)
	require.Equal(t, uint32(7), gotHdr.SeqNo)

	echoResp, _, err := proto.DecodeEchoResponse(payload)
	require.NoError(t, err)
	require.Equal(t, "HELLO", echoResp.Msg)
}

func TestSetLedOutOfRangeFails(t *testing.T) {
	addr := startTestServer(t)

	hdr := wire.Header{SeqNo: 1, Key: proto.SetLedEndpoint.Key()}
	req := proto.SetLedRequest{Num: 24, Color: proto.Green}
	resp := roundTrip(t, addr, hdr, req.Encode(nil))

	_, payload, err := wire.DecodeHeader(resp)
	require.NoError(t, err)

	result, _, err := proto.DecodeUnitResult(payload)
	require.NoError(t, err)
	require.False(t, result.Ok)
}

func TestSetLedInRangeSucceeds(t *testing.T) {
	addr := startTestServer(t)

	hdr := wire.Header{SeqNo: 2, Key: proto.SetLedEndpoint.Key()}
	req := proto.SetLedRequest{Num: 5, Color: proto.Yellow}
	resp := roundTrip(t, addr, hdr, req.Encode(nil))

	_, payload, err := wire.DecodeHeader(resp)
	require.NoError(t, err)

	result, _, err := proto.DecodeUnitResult(payload)
	require.NoError(t, err)
	require.True(t, result.Ok)
}

func TestUnknownEndpointYieldsNoReply(t *testing.T) {
	addr := startTestServer(t)

	conn, err := net.DialUDP("udp", nil, addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(200*time.Millisecond)))

	var badKey [8]byte
	copy(badKey[:], "bad/path")
	hdr := wire.Header{SeqNo: 99, Key: badKey}
	datagram := hdr.Encode(nil)
	_, err = conn.Write(datagram)
	require.NoError(t, err)

	buf := make([]byte, 1024)
	_, err = conn.Read(buf)
	require.Error(t, err, "no reply should ever be sent for an unmatched key")
}
