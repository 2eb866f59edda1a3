// Command wbnotifierd is the workbench notifier daemon: it owns a
// shared I²C bus, drives a bargraph and optional LCD attached to it, and
// serves the UDP RPC described in spec.md §6.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"wbnotifier/blink"
	"wbnotifier/bridge"
	"wbnotifier/config"
	"wbnotifier/devhub"
	"wbnotifier/drivers/bargraph"
	"wbnotifier/drivers/lcd"
	"wbnotifier/i2cbus"
	"wbnotifier/server"
	"wbnotifier/x/strx"
)

func main() {
	var (
		port     = flag.Int("p", 12000, "UDP port to bind")
		cfgPath  = flag.String("f", "", "device-table config file (JSON)")
		relaxed  = flag.Bool("r", false, "relaxed mode: continue even if an optional device fails to initialize")
		poolSize = flag.Int("workers", 2, "blocking-worker pool size")
	)
	flag.Parse()

	dev := flag.Arg(0)
	if dev == "" {
		log.Fatal("[main] missing required positional argument: I2C bus path")
	}

	var cfg config.File
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("[main] config: %v", err)
		}
	}

	mgr, err := i2cbus.Open(dev)
	if err != nil {
		log.Fatalf("[main] i2cbus: %v", err)
	}
	defer mgr.Close()

	pool := bridge.NewPool(*poolSize)

	devices, blinker := wireDevices(mgr, cfg, *relaxed, pool)
	defer closeDevices(devices)
	defer func() {
		if blinker != nil {
			blinker.Stop()
		}
	}()

	listenAddr := strx.Coalesce(cfg.ListenAddr, (&net.UDPAddr{IP: net.IPv4zero, Port: *port}).String())
	udpAddr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		log.Fatalf("[main] resolve %s: %v", listenAddr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		log.Fatalf("[main] listen %s: %v", udpAddr, err)
	}
	defer conn.Close()

	srv := server.New(conn, pool, devices, blinker)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("[main] listening on %s", conn.LocalAddr())
	if err := srv.Loop(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("[dispatch] loop exited: %v", err)
	}
	log.Printf("[main] shutting down")
}

// wireDevices builds devhub handles for every device named in cfg,
// initializing each driver before returning, and starts the
// notification blinker if a bargraph was configured. In relaxed mode a
// device that fails to initialize is logged and omitted rather than
// aborting the daemon.
func wireDevices(mgr *i2cbus.Manager, cfg config.File, relaxed bool, pool *bridge.Pool) (server.Devices, *blink.Blinker) {
	var devices server.Devices

	for _, d := range cfg.Devices {
		switch d.Driver {
		case config.Bargraph:
			drv := bargraph.New(mgr.Proxy(), uint16(d.Addr))
			if err := drv.Initialize(); err != nil {
				if relaxed {
					log.Printf("[main] bargraph %q init failed (relaxed, skipping): %v", d.Name, err)
					continue
				}
				log.Fatalf("[main] bargraph %q init failed: %v", d.Name, err)
			}
			devices.Bargraph = devhub.New(drv)
		case config.Hd44780:
			drv := lcd.New(mgr.Proxy(), uint16(d.Addr))
			if err := drv.Initialize(); err != nil {
				if relaxed {
					log.Printf("[main] lcd %q init failed (relaxed, skipping): %v", d.Name, err)
					continue
				}
				log.Fatalf("[main] lcd %q init failed: %v", d.Name, err)
			}
			devices.LCD = devhub.New(drv)
		}
	}

	var blinker *blink.Blinker
	if devices.Bargraph != nil {
		offload := func(f func() (any, error)) <-chan bridge.Result {
			return pool.Offload(context.Background(), f)
		}
		blinker = blink.Start(lockedBargraph{devices.Bargraph}, offload, func(err error) {
			log.Printf("[blink] driver error: %v", err)
		})
	}

	return devices, blinker
}

// closeDevices turns off whatever devices were wired in before the
// process exits, best-effort: a Close error is logged, never fatal,
// since the daemon is already on its way out.
func closeDevices(devices server.Devices) {
	if devices.Bargraph != nil {
		drv := devices.Bargraph.Lock()
		defer devices.Bargraph.Unlock()
		if err := drv.Close(context.Background()); err != nil {
			log.Printf("[main] bargraph close: %v", err)
		}
	}
	if devices.LCD != nil {
		drv := devices.LCD.Lock()
		defer devices.LCD.Unlock()
		if err := drv.Close(context.Background()); err != nil {
			log.Printf("[main] lcd close: %v", err)
		}
	}
}

// lockedBargraph adapts a devhub-guarded bargraph driver to
// blink.SetDisplay, taking the same device mutex request handlers use
// (devhub.Handle.Lock/Unlock) so the blinker's display-mode writes
// never interleave with a handler's LED writes on the wire.
type lockedBargraph struct {
	h *devhub.Handle[*bargraph.Driver]
}

func (l lockedBargraph) SetDisplay(mode bargraph.DisplayMode) error {
	drv := l.h.Lock()
	defer l.h.Unlock()
	return drv.SetDisplay(mode)
}
