// Package client implements the UDP RPC client: connect, serialize,
// send, read-with-timeout, retry, and pair replies by (seq_no, key)
// (spec.md §4.7).
package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"wbnotifier/rpc"
	"wbnotifier/wire"
)

// ErrNoResponse is returned once every retry is exhausted with no
// reply observed.
var ErrNoResponse = errors.New("client: no response after retries")

// BadResponseError is returned when a reply's header does not match the
// (seq_no, key) of the request it is paired against.
type BadResponseError struct {
	WantSeqNo uint32
	WantKey   rpc.Key
	GotSeqNo  uint32
	GotKey    rpc.Key
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("client: bad response: want (seq_no=%d key=%x), got (seq_no=%d key=%x)",
		e.WantSeqNo, e.WantKey, e.GotSeqNo, e.GotKey)
}

// ConnHealth reports how many retries the most recent Call actually
// consumed, letting callers (or tests) observe the connection's
// liveness without instrumenting the transport directly.
type ConnHealth struct {
	Retries int
}

// Conn is a connected UDP RPC client. It is not safe for concurrent use
// by multiple goroutines issuing overlapping Call invocations: seq_no
// pairing assumes one outstanding request at a time, matching the
// original single-threaded client.
type Conn struct {
	sock    *net.UDPConn
	timeout time.Duration
	retries int
}

// Connect opens a UDP socket, sets its read timeout, and connects it to
// addr (setting a default peer so Call can use Write instead of
// WriteTo).
func Connect(addr string, timeout time.Duration, retries int) (*Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: resolve %q: %w", addr, err)
	}
	sock, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("client: dial %q: %w", addr, err)
	}
	return &Conn{sock: sock, timeout: timeout, retries: retries}, nil
}

// Close releases the underlying socket.
func (c *Conn) Close() error { return c.sock.Close() }

// Call serializes req's payload under endpoint's key, sends it,
// resending up to retries times on a read timeout, and returns the raw
// response payload (with the header stripped) once a reply with a
// matching (seq_no, key) arrives. seq_no is always 0 (spec.md §4.7
// step 1): a Conn never has more than one request outstanding, so
// there is nothing for a per-call counter to disambiguate.
func (c *Conn) Call(endpoint rpc.Endpoint, payload []byte) ([]byte, ConnHealth, error) {
	const seqNo = 0
	key := endpoint.Key()

	hdr := wire.Header{SeqNo: seqNo, Key: key}
	datagram := hdr.Encode(make([]byte, 0, wire.HeaderSize+len(payload)))
	datagram = append(datagram, payload...)

	buf := make([]byte, 1024)
	attempts := c.retries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.sock.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, ConnHealth{Retries: attempt}, fmt.Errorf("client: set deadline: %w", err)
		}
		if _, err := c.sock.Write(datagram); err != nil {
			return nil, ConnHealth{Retries: attempt}, fmt.Errorf("client: send: %w", err)
		}

		n, err := c.sock.Read(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			return nil, ConnHealth{Retries: attempt}, fmt.Errorf("client: recv: %w", err)
		}

		gotHdr, respPayload, err := wire.DecodeHeader(buf[:n])
		if err != nil {
			return nil, ConnHealth{Retries: attempt}, fmt.Errorf("client: decode reply: %w", err)
		}
		if gotHdr.SeqNo != seqNo || gotHdr.Key != key {
			return nil, ConnHealth{Retries: attempt}, &BadResponseError{
				WantSeqNo: seqNo, WantKey: key,
				GotSeqNo: gotHdr.SeqNo, GotKey: gotHdr.Key,
			}
		}

		out := make([]byte, len(respPayload))
		copy(out, respPayload)
		return out, ConnHealth{Retries: attempt}, nil
	}

	return nil, ConnHealth{Retries: c.retries}, ErrNoResponse
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
