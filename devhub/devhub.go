// Package devhub wraps a device driver instance in the mutex that
// serializes access to it. A *Handle is created once at startup and
// shared by reference for the daemon's life; every caller that wants to
// use the driver must go through Lock/Unlock. While the dispatch loop
// runs, that happens only inside blocking-offload closures (spec.md
// §4.5); wbnotifierd's shutdown path locks the handles directly, after
// the dispatch loop has returned.
package devhub

import "sync"

// Handle is a mutex-guarded driver instance of type D. D is typically
// *bargraph.Driver or *lcd.Driver; devhub stays generic over it so it
// never needs to know the shape of what it's protecting.
type Handle[D any] struct {
	mu     sync.Mutex
	driver D
}

// New wraps drv in a Handle ready for concurrent use.
func New[D any](drv D) *Handle[D] {
	return &Handle[D]{driver: drv}
}

// Lock acquires the handle's mutex and returns the guarded driver. It
// must be paired with a call to Unlock, and — per the blocking-bridge
// contract — while the dispatch loop runs it must only be called from
// inside a bridge.Offload closure.
func (h *Handle[D]) Lock() D {
	h.mu.Lock()
	return h.driver
}

// Unlock releases the handle's mutex.
func (h *Handle[D]) Unlock() {
	h.mu.Unlock()
}
