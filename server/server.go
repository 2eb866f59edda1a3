// Package server implements the dispatch engine: the one goroutine that
// owns the UDP socket and the frozen rpc.Registry, reading datagrams and
// invoking handlers that spawn detached tasks to do the real work
// (spec.md §4.2, §5). This goroutine never blocks on I²C.
package server

import (
	"context"
	"log"
	"net"
	"time"

	"wbnotifier/blink"
	"wbnotifier/bridge"
	"wbnotifier/devhub"
	"wbnotifier/drivers/bargraph"
	"wbnotifier/drivers/lcd"
	"wbnotifier/rpc"
	"wbnotifier/wire"
)

// Devices bundles the device handles a Server may drive. LCD is
// optional (spec.md §1: "optionally a 20x4 LCD"); a nil LCD makes
// lcd/backlight and lcd/msg fail with errcode.NoDevice.
type Devices struct {
	Bargraph *devhub.Handle[*bargraph.Driver]
	LCD      *devhub.Handle[*lcd.Driver]
}

// Server owns the UDP socket, the frozen dispatch table, the blocking
// worker pool, and the notification blinker for a single bargraph.
type Server struct {
	conn     *net.UDPConn
	registry *rpc.Registry[*reqCtx]
	pool     *bridge.Pool
	devices  Devices
	blinker  *blink.Blinker
}

// reqCtx is the per-dispatch context value threaded through every
// handler: the peer to reply to, plus back-references to the Server's
// shared state. It satisfies rpc.Registry's context-type parameter, so
// handlers never type-assert a boxed context value.
type reqCtx struct {
	srv  *Server
	peer *net.UDPAddr
}

// New constructs a Server bound to conn, wiring devices and pool into
// every handler via the frozen registry returned by buildRegistry. The
// blinker drives devices.Bargraph's display mode; construct it with
// blink.Start before calling New.
func New(conn *net.UDPConn, pool *bridge.Pool, devices Devices, blinker *blink.Blinker) *Server {
	s := &Server{conn: conn, pool: pool, devices: devices, blinker: blinker}
	s.registry = buildRegistry()
	return s
}

// Loop runs the dispatch loop until ctx is cancelled or the socket
// errors. It never blocks on I²C: every handler it invokes deserializes
// its payload synchronously and spawns a detached goroutine for the rest
// (spec.md §4.2).
func (s *Server) Loop(ctx context.Context) error {
	// Wake a ReadFromUDP blocked on the socket once ctx is cancelled.
	stop := context.AfterFunc(ctx, func() { _ = s.conn.SetReadDeadline(time.Now()) })
	defer stop()

	buf := make([]byte, 1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, peer, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return err
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])

		rc := &reqCtx{srv: s, peer: peer}
		if err := s.registry.Dispatch(datagram, rc); err != nil {
			if nomatch, ok := err.(*rpc.NoMatchError); ok {
				log.Printf("[dispatch] no match for key %x (seq_no=%d)", nomatch.Key, nomatch.SeqNo)
				continue
			}
			log.Printf("[dispatch] parse error: %v", err)
		}
	}
}

// reply sends a response payload back to the originating peer, prefixed
// with the same (seq_no, key) header the request carried. Send failures
// are logged and dropped per spec.md §4.3: "all post-spawn errors...
// degrade to either an error response or a silent drop."
func (c *reqCtx) reply(hdr wire.Header, payload []byte) {
	buf := hdr.Encode(make([]byte, 0, wire.HeaderSize+len(payload)))
	buf = append(buf, payload...)
	if _, err := c.srv.conn.WriteToUDP(buf, c.peer); err != nil {
		log.Printf("[dispatch] reply to %s failed: %v", c.peer, err)
	}
}
