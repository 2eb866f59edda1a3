// Package i2cbus arbitrates a single shared Linux I²C bus among however
// many device drivers are attached to it. Only one owner ever holds the
// open bus file descriptor; every driver talks to it through a cloned
// Proxy that serializes its Tx calls through the owner's mutex.
package i2cbus

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Manager owns one opened I²C bus and arbitrates access to it.
type Manager struct {
	mu  sync.Mutex
	bus i2c.BusCloser
}

// Open initializes the periph.io host drivers (idempotent, safe to call
// from multiple Managers in the same process) and opens the named Linux
// I²C bus, e.g. "1" for /dev/i2c-1, "" for the system default.
func Open(name string) (*Manager, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("i2cbus: host init: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2cbus: open %q: %w", name, err)
	}
	return &Manager{bus: b}, nil
}

// Close releases the underlying bus file descriptor.
func (m *Manager) Close() error {
	return m.bus.Close()
}

// Proxy is a handle onto the Manager's shared bus. It implements
// tinygo.org/x/drivers.I2C so device drivers written against that
// interface run unmodified on top of a real periph.io bus; the address
// passed to Tx is whatever the driver holding the Proxy was configured
// with, not something the Proxy itself tracks.
type Proxy struct {
	mgr *Manager
}

// Proxy returns a new handle onto the shared bus. Proxies are cheap and
// may be created freely; the serialization lives in the shared Manager,
// not in the Proxy value itself.
func (m *Manager) Proxy() *Proxy {
	return &Proxy{mgr: m}
}

// Tx performs one write-then-read I²C transaction, serialized against
// every other Proxy sharing this Manager's bus.
func (p *Proxy) Tx(addr uint16, w, r []byte) error {
	p.mgr.mu.Lock()
	defer p.mgr.mu.Unlock()
	return p.mgr.bus.Tx(addr, w, r)
}
