// Command wbnotifierctl is a small client for the workbench notifier
// daemon: one UDP round trip per invocation, plus a repl subcommand for
// driving several calls against the same connection interactively
// (spec.md §6, §10).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"wbnotifier/client"
	"wbnotifier/proto"
)

const envAddr = "WBN_SERVER_ADDR"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "wbnotifierctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("wbnotifierctl", flag.ContinueOnError)
	addrFlag := fs.String("addr", "", "daemon address host:port (default: "+envAddr+")")
	timeout := fs.Duration("t", 500*time.Millisecond, "per-attempt read timeout")
	retries := fs.Int("retries", 3, "retry count before giving up")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr := *addrFlag
	if addr == "" {
		addr = os.Getenv(envAddr)
	}
	if addr == "" {
		return fmt.Errorf("no server address: pass -addr or set %s", envAddr)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("missing subcommand (notify, ack, config-bg, config-lcd, echo, repl)")
	}

	conn, err := client.Connect(addr, *timeout, *retries)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	if rest[0] == "repl" {
		return runRepl(conn, os.Stdin, os.Stdout)
	}
	return dispatch(conn, rest)
}

// dispatch runs a single subcommand (a slice like {"notify", "-l", "3",
// "-s", "warning"}) against conn and prints its result to stdout.
func dispatch(conn *client.Conn, args []string) error {
	switch args[0] {
	case "echo":
		return cmdEcho(conn, args[1:])
	case "notify":
		return cmdNotify(conn, args[1:])
	case "ack":
		return cmdAck(conn, args[1:])
	case "config-bg":
		return cmdConfigBg(conn, args[1:])
	case "config-lcd":
		return cmdConfigLcd(conn, args[1:])
	case "msg":
		return cmdMsg(conn, args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func cmdEcho(conn *client.Conn, args []string) error {
	fs := flag.NewFlagSet("echo", flag.ContinueOnError)
	msg := fs.String("m", "ping", "message to echo")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resp, _, err := conn.Call(proto.EchoEndpoint, proto.EchoRequest{Msg: *msg}.Encode(nil))
	if err != nil {
		return err
	}
	echoResp, _, err := proto.DecodeEchoResponse(resp)
	if err != nil {
		return err
	}
	fmt.Println(echoResp.Msg)
	return nil
}

func cmdNotify(conn *client.Conn, args []string) error {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	num := fs.Uint("l", 0, "LED number (0-23)")
	status := fs.String("s", "ok", "severity: ok, warning, error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := parseStatus(*status)
	if err != nil {
		return err
	}
	req := proto.NotifyRequest{Num: uint8(*num), Status: st}
	resp, _, err := conn.Call(proto.NotifyEndpoint, req.Encode(nil))
	if err != nil {
		return err
	}
	return reportUnitResult(resp)
}

func cmdAck(conn *client.Conn, args []string) error {
	fs := flag.NewFlagSet("ack", flag.ContinueOnError)
	numStr := fs.String("l", "", "LED number to acknowledge (omit for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var req proto.AckRequest
	if *numStr != "" {
		n, err := strconv.ParseUint(*numStr, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid -l value %q: %w", *numStr, err)
		}
		v := uint8(n)
		req.Num = &v
	}
	resp, _, err := conn.Call(proto.AckEndpoint, req.Encode(nil))
	if err != nil {
		return err
	}
	return reportUnitResult(resp)
}

func cmdConfigBg(conn *client.Conn, args []string) error {
	fs := flag.NewFlagSet("config-bg", flag.ContinueOnError)
	dimming := fs.String("d", "hi", "brightness: hi or lo")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var d proto.Dimming
	switch strings.ToLower(*dimming) {
	case "hi":
		d = proto.DimHi
	case "lo":
		d = proto.DimLo
	default:
		return fmt.Errorf("invalid -d value %q: expected hi or lo", *dimming)
	}
	req := proto.SetDimmingRequest{Dimming: d}
	resp, _, err := conn.Call(proto.SetDimmingEndpoint, req.Encode(nil))
	if err != nil {
		return err
	}
	return reportUnitResult(resp)
}

func cmdConfigLcd(conn *client.Conn, args []string) error {
	fs := flag.NewFlagSet("config-lcd", flag.ContinueOnError)
	backlight := fs.String("b", "on", "backlight: on or off")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var b proto.Backlight
	switch strings.ToLower(*backlight) {
	case "on":
		b = proto.BacklightOn
	case "off":
		b = proto.BacklightOff
	default:
		return fmt.Errorf("invalid -b value %q: expected on or off", *backlight)
	}
	req := proto.SetBacklightRequest{Backlight: b}
	resp, _, err := conn.Call(proto.SetBacklightEndpoint, req.Encode(nil))
	if err != nil {
		return err
	}
	return reportUnitResult(resp)
}

func cmdMsg(conn *client.Conn, args []string) error {
	fs := flag.NewFlagSet("msg", flag.ContinueOnError)
	text := fs.String("m", "", "text to display")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req := proto.SendMsgRequest{Text: *text}
	resp, _, err := conn.Call(proto.SendMsgEndpoint, req.Encode(nil))
	if err != nil {
		return err
	}
	result, _, err := proto.DecodeSendMsgResult(resp)
	if err != nil {
		return err
	}
	if !result.Ok {
		return fmt.Errorf("lcd/msg failed")
	}
	if result.Val == proto.SendMsgTruncated {
		fmt.Println("ok (truncated)")
	} else {
		fmt.Println("ok")
	}
	return nil
}

func parseStatus(s string) (proto.Status, error) {
	switch strings.ToLower(s) {
	case "ok":
		return proto.StatusOk, nil
	case "warning", "warn":
		return proto.StatusWarning, nil
	case "error", "err":
		return proto.StatusError, nil
	default:
		return 0, fmt.Errorf("invalid status %q: expected ok, warning or error", s)
	}
}

func reportUnitResult(payload []byte) error {
	result, _, err := proto.DecodeUnitResult(payload)
	if err != nil {
		return err
	}
	if !result.Ok {
		return fmt.Errorf("request failed")
	}
	fmt.Println("ok")
	return nil
}

// runRepl reads whitespace-tokenized command lines from in, one
// subcommand call per line, echoing results or errors to out until EOF
// or an explicit "quit"/"exit" line.
func runRepl(conn *client.Conn, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "wbn> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		tokens, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintln(out, "parse error:", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		if err := dispatch(conn, tokens); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}
