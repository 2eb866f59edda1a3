package i2cbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

// fakeBus records every Tx call's (addr, write-payload) pair. It is not
// safe for concurrent use on its own; that is exactly the property the
// Manager's mutex is responsible for providing.
type fakeBus struct {
	calls [][]byte
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	cp := append([]byte(nil), w...)
	f.calls = append(f.calls, cp)
	return nil
}

func (f *fakeBus) String() string { return "fake" }

func (f *fakeBus) SetSpeed(physic.Frequency) error { return nil }

func (f *fakeBus) Close() error { return nil }

func TestProxySerializesConcurrentTx(t *testing.T) {
	fb := &fakeBus{}
	mgr := &Manager{bus: fb}

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := mgr.Proxy()
			require.NoError(t, p.Tx(0x20, []byte{byte(i)}, nil))
		}(i)
	}
	wg.Wait()

	require.Len(t, fb.calls, n, "every concurrent Tx must be recorded exactly once")
}
