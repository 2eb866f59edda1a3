package server

import (
	"context"
	"log"
	"strings"

	"wbnotifier/errcode"
	"wbnotifier/proto"
	"wbnotifier/rpc"
	"wbnotifier/wire"
	"wbnotifier/x/mathx"
)

// buildRegistry registers every endpoint named in spec.md §6 and
// freezes the table. Handlers are registered before the serve loop
// starts and the table never changes again (spec.md §4.2).
func buildRegistry() *rpc.Registry[*reqCtx] {
	r := rpc.NewRegistry[*reqCtx]()
	must := func(ep rpc.Endpoint, h rpc.Handler[*reqCtx]) {
		if err := r.Register(ep, h); err != nil {
			// Only reachable if the endpoint table above was edited to
			// collide with itself; a programmer error, not a runtime one.
			panic(err)
		}
	}

	must(proto.EchoEndpoint, handleEcho)
	must(proto.SetLedEndpoint, handleSetLed)
	must(proto.SetDimmingEndpoint, handleSetDimming)
	must(proto.NotifyEndpoint, handleNotify)
	must(proto.AckEndpoint, handleAck)
	must(proto.SetBacklightEndpoint, handleSetBacklight)
	must(proto.SendMsgEndpoint, handleSendMsg)

	r.Freeze()
	return r
}

// handleEcho returns the request string uppercased; used as a liveness
// probe. It never fails, so it is the one endpoint not wrapped in a
// Result.
func handleEcho(hdr wire.Header, rc *reqCtx, payload []byte) {
	req, _, err := proto.DecodeEchoRequest(payload)
	if err != nil {
		log.Printf("[dispatch] debug/echo: parse error: %v", err)
		return
	}
	go func() {
		resp := proto.EchoResponse{Msg: strings.ToUpper(req.Msg)}
		rc.reply(hdr, resp.Encode(nil))
	}()
}

// handleSetLed validates num before touching the device and paints the
// LED's red/green cells per the mapping in spec.md §3.
func handleSetLed(hdr wire.Header, rc *reqCtx, payload []byte) {
	req, _, err := proto.DecodeSetLedRequest(payload)
	if err != nil {
		log.Printf("[dispatch] led/set: parse error: %v", err)
		return
	}
	go func() {
		var callErr error
		if !mathx.Between(req.Num, 0, 23) {
			callErr = &errcode.E{C: errcode.LEDOutOfRange, Op: "led/set", Msg: "num out of range"}
		} else {
			callErr = withBargraph(rc.srv, func(d bargraphDriver) error {
				return d.SetLedNo(req.Num, req.Color)
			})
		}
		rc.reply(hdr, proto.EncodeUnitResult(nil, callErr))
	}()
}

// handleSetDimming maps Lo/Hi to the driver's brightness levels.
func handleSetDimming(hdr wire.Header, rc *reqCtx, payload []byte) {
	req, _, err := proto.DecodeSetDimmingRequest(payload)
	if err != nil {
		log.Printf("[dispatch] led/dimming: parse error: %v", err)
		return
	}
	go func() {
		callErr := withBargraph(rc.srv, func(d bargraphDriver) error {
			return d.SetDimming(req.Dimming)
		})
		rc.reply(hdr, proto.EncodeUnitResult(nil, callErr))
	}()
}

// handleNotify paints the LED the color derived from status, then
// signals LedSet to the blinker after the reply is sent (spec.md §4.3
// point 4: "after sending the reply").
func handleNotify(hdr wire.Header, rc *reqCtx, payload []byte) {
	req, _, err := proto.DecodeNotifyRequest(payload)
	if err != nil {
		log.Printf("[dispatch] led/notify: parse error: %v", err)
		return
	}
	go func() {
		var callErr error
		if !mathx.Between(req.Num, 0, 23) {
			callErr = &errcode.E{C: errcode.LEDOutOfRange, Op: "led/notify", Msg: "num out of range"}
		} else {
			callErr = withBargraph(rc.srv, func(d bargraphDriver) error {
				return d.SetLedNo(req.Num, req.Status.Color())
			})
		}
		rc.reply(hdr, proto.EncodeUnitResult(nil, callErr))
		if callErr == nil && rc.srv.blinker != nil {
			rc.srv.blinker.Notify()
		}
	}()
}

// handleAck sets one LED (or, with num absent, every LED) Off, then
// signals LedClear to the blinker. Conservative by design (spec.md §9,
// open question resolved in DESIGN.md): even acknowledging a single LED
// drives the blinker all the way to Off, regardless of whether other
// notifications remain lit.
func handleAck(hdr wire.Header, rc *reqCtx, payload []byte) {
	req, _, err := proto.DecodeAckRequest(payload)
	if err != nil {
		log.Printf("[dispatch] led/ack: parse error: %v", err)
		return
	}
	go func() {
		var callErr error
		if req.Num != nil && !mathx.Between(*req.Num, 0, 23) {
			callErr = &errcode.E{C: errcode.LEDOutOfRange, Op: "led/ack", Msg: "num out of range"}
		} else {
			callErr = withBargraph(rc.srv, func(d bargraphDriver) error {
				if req.Num != nil {
					return d.SetLedNo(*req.Num, proto.Off)
				}
				for n := uint8(0); n < 24; n++ {
					if err := d.SetLedNo(n, proto.Off); err != nil {
						return err
					}
				}
				return nil
			})
		}
		rc.reply(hdr, proto.EncodeUnitResult(nil, callErr))
		if callErr == nil && rc.srv.blinker != nil {
			rc.srv.blinker.Ack()
		}
	}()
}

// handleSetBacklight is LCD-only; it fails with errcode.NoDevice when
// no LCD is configured.
func handleSetBacklight(hdr wire.Header, rc *reqCtx, payload []byte) {
	req, _, err := proto.DecodeSetBacklightRequest(payload)
	if err != nil {
		log.Printf("[dispatch] lcd/backlight: parse error: %v", err)
		return
	}
	go func() {
		callErr := withLCD(rc.srv, func(d lcdDriverHandle) error {
			return d.SetBacklight(req.Backlight == proto.BacklightOn)
		})
		rc.reply(hdr, proto.EncodeUnitResult(nil, callErr))
	}()
}

// handleSendMsg is LCD-only: clears the display, writes ASCII bytes
// wrapping every 20 characters, silently skipping non-ASCII bytes, and
// reports Ok or Truncated.
func handleSendMsg(hdr wire.Header, rc *reqCtx, payload []byte) {
	req, _, err := proto.DecodeSendMsgRequest(payload)
	if err != nil {
		log.Printf("[dispatch] lcd/msg: parse error: %v", err)
		return
	}
	go func() {
		var result proto.SendMsgResult
		callErr := withLCD(rc.srv, func(d lcdDriverHandle) error {
			truncated, err := d.WriteString(req.Text)
			if truncated {
				result = proto.SendMsgTruncated
			} else {
				result = proto.SendMsgOk
			}
			return err
		})
		rc.reply(hdr, proto.EncodeSendMsgResult(nil, result, callErr))
	}()
}

// bargraphDriver is the subset of *bargraph.Driver the handlers above
// need; defined here so withBargraph stays agnostic of the concrete
// driver type.
type bargraphDriver interface {
	SetLedNo(num uint8, color proto.LedColor) error
	SetDimming(proto.Dimming) error
}

// lcdDriverHandle is the subset of *lcd.Driver the handlers above need.
type lcdDriverHandle interface {
	SetBacklight(on bool) error
	WriteString(s string) (truncated bool, err error)
}

// withBargraph offloads one bargraph driver call through the server's
// blocking-worker pool and waits for its result. The returned error is
// nil on success; callers pass it straight to proto.EncodeUnitResult,
// which only cares whether it is nil.
func withBargraph(srv *Server, f func(bargraphDriver) error) error {
	if srv.devices.Bargraph == nil {
		return &errcode.E{C: errcode.NoDevice, Msg: "no bargraph configured"}
	}
	res := <-srv.pool.Offload(context.Background(), func() (any, error) {
		d := srv.devices.Bargraph.Lock()
		defer srv.devices.Bargraph.Unlock()
		return nil, f(d)
	})
	if res.Err != nil {
		log.Printf("[bargraph] driver error (code=%s): %v", errcode.MapDriverErr(res.Err), res.Err)
	}
	return res.Err
}

// withLCD offloads one LCD driver call through the server's
// blocking-worker pool and waits for its result.
func withLCD(srv *Server, f func(lcdDriverHandle) error) error {
	if srv.devices.LCD == nil {
		return &errcode.E{C: errcode.NoDevice, Msg: "no LCD configured"}
	}
	res := <-srv.pool.Offload(context.Background(), func() (any, error) {
		d := srv.devices.LCD.Lock()
		defer srv.devices.LCD.Unlock()
		return nil, f(d)
	})
	if res.Err != nil {
		log.Printf("[lcd] driver error (code=%s): %v", errcode.MapDriverErr(res.Err), res.Err)
	}
	return res.Err
}
